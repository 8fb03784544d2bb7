// Package reference holds the host-platform objects that the spare parts
// ledger points at: manufacturers, locations, equipment models, equipment
// and actors.
package reference

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

const maxNameLength = 100

// ValidateSlug checks a URL-safe identifier
func ValidateSlug(slug string) error {
	if slug == "" {
		return shared.NewValidationError("Slug cannot be empty")
	}
	if len(slug) > maxNameLength {
		return shared.NewValidationError("Slug cannot exceed 100 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewValidationError("Slug may only contain letters, numbers, hyphens and underscores")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("Name cannot be empty")
	}
	if len(name) > maxNameLength {
		return shared.NewValidationError("Name cannot exceed 100 characters")
	}
	return nil
}

// Manufacturer produces part types and equipment models
type Manufacturer struct {
	shared.AuditableEntity
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer creates a validated manufacturer
func NewManufacturer(name, slug string) (*Manufacturer, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	return &Manufacturer{
		AuditableEntity: shared.NewAuditableEntity(),
		Name:            strings.TrimSpace(name),
		Slug:            slug,
	}, nil
}

// Location is a place where stock is kept
type Location struct {
	shared.AuditableEntity
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a validated location
func NewLocation(name, slug, description string) (*Location, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	return &Location{
		AuditableEntity: shared.NewAuditableEntity(),
		Name:            strings.TrimSpace(name),
		Slug:            slug,
		Description:     description,
	}, nil
}

// EquipmentModel is a device type that parts can be compatible with
type EquipmentModel struct {
	shared.AuditableEntity
	ManufacturerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Model          string    `gorm:"type:varchar(100);not null"`
	Slug           string    `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (EquipmentModel) TableName() string {
	return "equipment_models"
}

// NewEquipmentModel creates a validated equipment model
func NewEquipmentModel(manufacturerID uuid.UUID, model, slug string) (*EquipmentModel, error) {
	if manufacturerID == uuid.Nil {
		return nil, shared.NewValidationError("Manufacturer is required")
	}
	if err := validateName(model); err != nil {
		return nil, err
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	return &EquipmentModel{
		AuditableEntity: shared.NewAuditableEntity(),
		ManufacturerID:  manufacturerID,
		Model:           strings.TrimSpace(model),
		Slug:            slug,
	}, nil
}

// Equipment is an installed device that parts are checked out to
type Equipment struct {
	shared.AuditableEntity
	Name       string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	ModelID    *uuid.UUID `gorm:"type:uuid;index"`
	LocationID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Equipment) TableName() string {
	return "equipment"
}

// NewEquipment creates a validated piece of equipment
func NewEquipment(name string, modelID, locationID *uuid.UUID) (*Equipment, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Equipment{
		AuditableEntity: shared.NewAuditableEntity(),
		Name:            strings.TrimSpace(name),
		ModelID:         modelID,
		LocationID:      locationID,
	}, nil
}

// Actor is a user that ledger operations are attributed to
type Actor struct {
	shared.AuditableEntity
	Username    string `gorm:"type:varchar(150);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Actor) TableName() string {
	return "actors"
}

// NewActor creates a validated actor
func NewActor(username, displayName string) (*Actor, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewValidationError("Username cannot be empty")
	}
	if len(username) > 150 {
		return nil, shared.NewValidationError("Username cannot exceed 150 characters")
	}
	return &Actor{
		AuditableEntity: shared.NewAuditableEntity(),
		Username:        username,
		DisplayName:     displayName,
	}, nil
}
