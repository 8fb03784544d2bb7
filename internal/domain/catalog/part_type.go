package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
)

// Category classifies a part type
type Category string

const (
	CategoryRAM         Category = "ram"
	CategoryCable       Category = "cable"
	CategoryTransceiver Category = "transceiver"
	CategoryPSU         Category = "psu"
	CategoryHDD         Category = "hdd"
	CategorySSD         Category = "ssd"
	CategoryNIC         Category = "nic"
	CategoryFan         Category = "fan"
	CategoryMotherboard Category = "motherboard"
	CategoryCPU         Category = "cpu"
	CategoryOther       Category = "other"
)

// AllCategories lists every category in display order
func AllCategories() []Category {
	return []Category{
		CategoryRAM, CategoryCable, CategoryTransceiver, CategoryPSU, CategoryHDD,
		CategorySSD, CategoryNIC, CategoryFan, CategoryMotherboard, CategoryCPU, CategoryOther,
	}
}

// IsValid returns true if the category is known
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

var maxUnitCost = decimal.New(1, 8)

// PartType describes a kind of spare part
type PartType struct {
	shared.AuditableEntity
	Name           string           `gorm:"type:varchar(100);not null"`
	Slug           string           `gorm:"type:varchar(100);not null;uniqueIndex"`
	ManufacturerID *uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_part_type_manufacturer_part_number,where:part_number <> ''"`
	PartNumber     string           `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_part_type_manufacturer_part_number,where:part_number <> ''"`
	Description    string           `gorm:"type:text"`
	Category       Category         `gorm:"type:varchar(50);not null;default:'other';index"`
	UnitCost       *decimal.Decimal `gorm:"type:decimal(10,2)"`

	// CompatibleModelIDs is persisted through the part_type_compatible_models join table
	CompatibleModelIDs []uuid.UUID `gorm:"-"`
}

// TableName returns the table name for GORM
func (PartType) TableName() string {
	return "part_types"
}

// PartTypeAttributes holds the editable fields of a part type
type PartTypeAttributes struct {
	Name               string
	Slug               string
	ManufacturerID     *uuid.UUID
	PartNumber         string
	Description        string
	Category           Category
	UnitCost           *decimal.Decimal
	CompatibleModelIDs []uuid.UUID
	Tags               []string
}

// NewPartType creates a validated part type
func NewPartType(attrs PartTypeAttributes) (*PartType, error) {
	pt := &PartType{AuditableEntity: shared.NewAuditableEntity()}
	if err := pt.apply(attrs); err != nil {
		return nil, err
	}
	return pt, nil
}

// Update replaces the editable fields after validation.
// The part type is left unchanged when validation fails.
func (p *PartType) Update(attrs PartTypeAttributes) error {
	candidate := *p
	if err := candidate.apply(attrs); err != nil {
		return err
	}
	candidate.Touch(time.Now())
	*p = candidate
	return nil
}

func (p *PartType) apply(attrs PartTypeAttributes) error {
	category := attrs.Category
	if category == "" {
		category = CategoryOther
	}

	p.Name = strings.TrimSpace(attrs.Name)
	p.Slug = attrs.Slug
	p.ManufacturerID = attrs.ManufacturerID
	if p.ManufacturerID != nil && *p.ManufacturerID == uuid.Nil {
		p.ManufacturerID = nil
	}
	p.PartNumber = strings.TrimSpace(attrs.PartNumber)
	p.Description = attrs.Description
	p.Category = category
	p.UnitCost = attrs.UnitCost
	p.CompatibleModelIDs = dedupeIDs(attrs.CompatibleModelIDs)
	p.SetTags(attrs.Tags)

	return p.Validate()
}

// Validate checks field constraints and the manufacturer/part number pairing
func (p *PartType) Validate() error {
	if p.Name == "" {
		return shared.NewValidationError("Part type name cannot be empty")
	}
	if len(p.Name) > 100 {
		return shared.NewValidationError("Part type name cannot exceed 100 characters")
	}
	if err := reference.ValidateSlug(p.Slug); err != nil {
		return err
	}
	if len(p.PartNumber) > 100 {
		return shared.NewValidationError("Part number cannot exceed 100 characters")
	}
	if p.PartNumber != "" && p.ManufacturerID == nil {
		return shared.NewValidationError("Manufacturer is required when part number is specified")
	}
	if !p.Category.IsValid() {
		return shared.NewValidationError("Invalid part category: " + p.Category.String())
	}
	if p.UnitCost != nil {
		if p.UnitCost.IsNegative() {
			return shared.NewValidationError("Unit cost cannot be negative")
		}
		if !p.UnitCost.Equal(p.UnitCost.Round(2)) {
			return shared.NewValidationError("Unit cost cannot have more than 2 decimal places")
		}
		if p.UnitCost.GreaterThanOrEqual(maxUnitCost) {
			return shared.NewValidationError("Unit cost exceeds the maximum of 99999999.99")
		}
	}
	return nil
}

// IsCompatibleWith reports whether the part type fits the equipment model
func (p *PartType) IsCompatibleWith(modelID uuid.UUID) bool {
	for _, id := range p.CompatibleModelIDs {
		if id == modelID {
			return true
		}
	}
	return false
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CompatibleModel links a part type to an equipment model it fits
type CompatibleModel struct {
	PartTypeID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	EquipmentModelID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (CompatibleModel) TableName() string {
	return "part_type_compatible_models"
}
