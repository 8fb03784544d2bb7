package reference

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

// Repository is the common persistence contract for reference entities.
// Search in the filter matches the entity's display name.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]T, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ManufacturerRepository persists manufacturers
type ManufacturerRepository interface {
	Repository[Manufacturer]
}

// LocationRepository persists locations
type LocationRepository interface {
	Repository[Location]
}

// EquipmentModelRepository persists equipment models
type EquipmentModelRepository interface {
	Repository[EquipmentModel]
	// ExistsByManufacturer checks whether any model references the manufacturer
	ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error)
}

// EquipmentRepository persists equipment
type EquipmentRepository interface {
	Repository[Equipment]
	// ClearLocation nulls the location of equipment at the given location
	ClearLocation(ctx context.Context, locationID uuid.UUID) error
	// ClearModel nulls the model of equipment of the given model
	ClearModel(ctx context.Context, modelID uuid.UUID) error
}

// ActorRepository persists actors
type ActorRepository interface {
	Repository[Actor]
}
