package reference

import (
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/reference"
)

// CreateManufacturerRequest represents a request to create a manufacturer
type CreateManufacturerRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,max=100,slug"`
}

// CreateLocationRequest represents a request to create a location
type CreateLocationRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"required,max=100,slug"`
	Description string `json:"description"`
}

// CreateEquipmentModelRequest represents a request to create an equipment model
type CreateEquipmentModelRequest struct {
	ManufacturerID uuid.UUID `json:"manufacturer_id" binding:"required"`
	Model          string    `json:"model" binding:"required,max=100"`
	Slug           string    `json:"slug" binding:"required,max=100,slug"`
}

// CreateEquipmentRequest represents a request to register a piece of equipment
type CreateEquipmentRequest struct {
	Name       string     `json:"name" binding:"required,max=100"`
	ModelID    *uuid.UUID `json:"model_id"`
	LocationID *uuid.UUID `json:"location_id"`
}

// CreateActorRequest represents a request to create an actor
type CreateActorRequest struct {
	Username    string `json:"username" binding:"required,max=150"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// ListFilter is the filter shared by every reference list
type ListFilter struct {
	Search   string
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ManufacturerResponse represents a manufacturer in API responses
type ManufacturerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// EquipmentModelResponse represents an equipment model in API responses
type EquipmentModelResponse struct {
	ID             uuid.UUID `json:"id"`
	ManufacturerID uuid.UUID `json:"manufacturer_id"`
	Model          string    `json:"model"`
	Slug           string    `json:"slug"`
	CreatedAt      time.Time `json:"created_at"`
}

// EquipmentResponse represents a piece of equipment in API responses
type EquipmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ModelID    *uuid.UUID `json:"model_id"`
	LocationID *uuid.UUID `json:"location_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ActorResponse represents an actor in API responses
type ActorResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func toManufacturerResponse(m *reference.Manufacturer) ManufacturerResponse {
	return ManufacturerResponse{ID: m.ID, Name: m.Name, Slug: m.Slug, CreatedAt: m.CreatedAt}
}

func toLocationResponse(l *reference.Location) LocationResponse {
	return LocationResponse{ID: l.ID, Name: l.Name, Slug: l.Slug, Description: l.Description, CreatedAt: l.CreatedAt}
}

func toEquipmentModelResponse(m *reference.EquipmentModel) EquipmentModelResponse {
	return EquipmentModelResponse{ID: m.ID, ManufacturerID: m.ManufacturerID, Model: m.Model, Slug: m.Slug, CreatedAt: m.CreatedAt}
}

func toEquipmentResponse(e *reference.Equipment) EquipmentResponse {
	return EquipmentResponse{ID: e.ID, Name: e.Name, ModelID: e.ModelID, LocationID: e.LocationID, CreatedAt: e.CreatedAt}
}

func toActorResponse(a *reference.Actor) ActorResponse {
	return ActorResponse{ID: a.ID, Username: a.Username, DisplayName: a.DisplayName, CreatedAt: a.CreatedAt}
}
