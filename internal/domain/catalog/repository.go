package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

// PartTypeRepository defines the interface for part type persistence
type PartTypeRepository interface {
	// FindByID finds a part type by ID, with its compatible model IDs loaded
	FindByID(ctx context.Context, id uuid.UUID) (*PartType, error)

	// FindBySlug finds a part type by its unique slug
	FindBySlug(ctx context.Context, slug string) (*PartType, error)

	// FindAll finds part types matching the filter
	FindAll(ctx context.Context, filter PartTypeFilter) ([]PartType, error)

	// Count counts part types matching the filter
	Count(ctx context.Context, filter PartTypeFilter) (int64, error)

	// Save creates or updates a part type together with its compatible model links
	Save(ctx context.Context, partType *PartType) error

	// Delete deletes a part type; callers check references first
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByManufacturer checks whether any part type references the manufacturer
	ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error)

	// RemoveCompatibleModel drops every link to the equipment model
	RemoveCompatibleModel(ctx context.Context, equipmentModelID uuid.UUID) error
}

// PartTypeFilter extends shared.Filter with part type specific filters.
// Search matches name, part number, description and manufacturer name.
type PartTypeFilter struct {
	shared.Filter
	ManufacturerID    *uuid.UUID
	Category          Category
	CompatibleModelID *uuid.UUID
}
