package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spares/backend/internal/domain/catalog"
)

// PartTypeRequest represents a request to create or replace a part type
type PartTypeRequest struct {
	Name               string           `json:"name" binding:"required,max=100"`
	Slug               string           `json:"slug" binding:"required,max=100,slug"`
	ManufacturerID     *uuid.UUID       `json:"manufacturer_id"`
	PartNumber         string           `json:"part_number" binding:"max=100"`
	Description        string           `json:"description"`
	Category           catalog.Category `json:"category" binding:"omitempty,oneof=ram cable transceiver psu hdd ssd nic fan motherboard cpu other"`
	UnitCost           *decimal.Decimal `json:"unit_cost"`
	CompatibleModelIDs []uuid.UUID      `json:"compatible_model_ids"`
	Tags               []string         `json:"tags"`
}

// PartTypeResponse represents a part type in API responses
type PartTypeResponse struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Slug               string           `json:"slug"`
	ManufacturerID     *uuid.UUID       `json:"manufacturer_id"`
	PartNumber         string           `json:"part_number"`
	Description        string           `json:"description"`
	Category           string           `json:"category"`
	UnitCost           *decimal.Decimal `json:"unit_cost"`
	CompatibleModelIDs []uuid.UUID      `json:"compatible_model_ids"`
	Tags               []string         `json:"tags"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PartTypeStockResponse summarizes stock of a part type across locations
type PartTypeStockResponse struct {
	PartTypeID         uuid.UUID   `json:"part_type_id"`
	TotalQuantity      int64       `json:"total_quantity"`
	LocationsWithStock []uuid.UUID `json:"locations_with_stock"`
}

// PartTypeListFilter represents filter options for the part type list
type PartTypeListFilter struct {
	Search            string
	ManufacturerID    *uuid.UUID
	Category          catalog.Category
	CompatibleModelID *uuid.UUID
	Page              int
	PageSize          int
	OrderBy           string
	OrderDir          string
}

// Attributes converts the request to domain attributes
func (r PartTypeRequest) Attributes() catalog.PartTypeAttributes {
	return catalog.PartTypeAttributes{
		Name:               r.Name,
		Slug:               r.Slug,
		ManufacturerID:     r.ManufacturerID,
		PartNumber:         r.PartNumber,
		Description:        r.Description,
		Category:           r.Category,
		UnitCost:           r.UnitCost,
		CompatibleModelIDs: r.CompatibleModelIDs,
		Tags:               r.Tags,
	}
}

// ToPartTypeResponse converts a domain part type to a response
func ToPartTypeResponse(pt *catalog.PartType) PartTypeResponse {
	compatible := pt.CompatibleModelIDs
	if compatible == nil {
		compatible = []uuid.UUID{}
	}
	return PartTypeResponse{
		ID:                 pt.ID,
		Name:               pt.Name,
		Slug:               pt.Slug,
		ManufacturerID:     pt.ManufacturerID,
		PartNumber:         pt.PartNumber,
		Description:        pt.Description,
		Category:           pt.Category.String(),
		UnitCost:           pt.UnitCost,
		CompatibleModelIDs: compatible,
		Tags:               pt.GetTags(),
		CreatedAt:          pt.CreatedAt,
		UpdatedAt:          pt.UpdatedAt,
	}
}

// ToPartTypeResponses converts a slice of domain part types to responses
func ToPartTypeResponses(pts []catalog.PartType) []PartTypeResponse {
	responses := make([]PartTypeResponse, len(pts))
	for i := range pts {
		responses[i] = ToPartTypeResponse(&pts[i])
	}
	return responses
}
