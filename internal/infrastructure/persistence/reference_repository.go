package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/reference"
	"github.com/spares/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReferenceRepository is the shared GORM implementation of
// reference.Repository for the small lookup entities.
type GormReferenceRepository[T any] struct {
	db            *gorm.DB
	searchColumns []string
	sort          sortable
}

func newReferenceRepository[T any](db *gorm.DB, sort sortable, searchColumns ...string) GormReferenceRepository[T] {
	return GormReferenceRepository[T]{db: db, searchColumns: searchColumns, sort: sort}
}

// FindByID finds an entity by its ID
func (r *GormReferenceRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &entity, nil
}

// FindAll finds entities matching the filter
func (r *GormReferenceRepository[T]) FindAll(ctx context.Context, filter shared.Filter) ([]T, error) {
	var items []T
	query := applySearch(r.db.WithContext(ctx).Model(new(T)), filter.Search, r.searchColumns...)
	query = paginate(r.sort.apply(query, filter), filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts entities matching the filter
func (r *GormReferenceRepository[T]) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var total int64
	query := applySearch(r.db.WithContext(ctx).Model(new(T)), filter.Search, r.searchColumns...)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates an entity
func (r *GormReferenceRepository[T]) Save(ctx context.Context, entity *T) error {
	return translateError(r.db.WithContext(ctx).Save(entity).Error)
}

// Delete deletes an entity by ID
func (r *GormReferenceRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormManufacturerRepository implements reference.ManufacturerRepository
type GormManufacturerRepository struct {
	GormReferenceRepository[reference.Manufacturer]
}

// NewGormManufacturerRepository creates a new GormManufacturerRepository
func NewGormManufacturerRepository(db *gorm.DB) *GormManufacturerRepository {
	return &GormManufacturerRepository{
		newReferenceRepository[reference.Manufacturer](db, manufacturerSort, "name", "slug"),
	}
}

// GormLocationRepository implements reference.LocationRepository
type GormLocationRepository struct {
	GormReferenceRepository[reference.Location]
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{
		newReferenceRepository[reference.Location](db, locationSort, "name", "slug", "description"),
	}
}

// GormEquipmentModelRepository implements reference.EquipmentModelRepository
type GormEquipmentModelRepository struct {
	GormReferenceRepository[reference.EquipmentModel]
}

// NewGormEquipmentModelRepository creates a new GormEquipmentModelRepository
func NewGormEquipmentModelRepository(db *gorm.DB) *GormEquipmentModelRepository {
	return &GormEquipmentModelRepository{
		newReferenceRepository[reference.EquipmentModel](db, equipmentModelSort, "model", "slug"),
	}
}

// ExistsByManufacturer checks whether any model references the manufacturer
func (r *GormEquipmentModelRepository) ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&reference.EquipmentModel{}).
		Where("manufacturer_id = ?", manufacturerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormEquipmentRepository implements reference.EquipmentRepository
type GormEquipmentRepository struct {
	GormReferenceRepository[reference.Equipment]
}

// NewGormEquipmentRepository creates a new GormEquipmentRepository
func NewGormEquipmentRepository(db *gorm.DB) *GormEquipmentRepository {
	return &GormEquipmentRepository{
		newReferenceRepository[reference.Equipment](db, equipmentSort, "name"),
	}
}

// ClearLocation nulls the location of equipment at the given location
func (r *GormEquipmentRepository) ClearLocation(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&reference.Equipment{}).
		Where("location_id = ?", locationID).
		Update("location_id", nil).Error
}

// ClearModel nulls the model of equipment of the given model
func (r *GormEquipmentRepository) ClearModel(ctx context.Context, modelID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&reference.Equipment{}).
		Where("model_id = ?", modelID).
		Update("model_id", nil).Error
}

// GormActorRepository implements reference.ActorRepository
type GormActorRepository struct {
	GormReferenceRepository[reference.Actor]
}

// NewGormActorRepository creates a new GormActorRepository
func NewGormActorRepository(db *gorm.DB) *GormActorRepository {
	return &GormActorRepository{
		newReferenceRepository[reference.Actor](db, actorSort, "username", "display_name"),
	}
}

var (
	_ reference.ManufacturerRepository   = (*GormManufacturerRepository)(nil)
	_ reference.LocationRepository       = (*GormLocationRepository)(nil)
	_ reference.EquipmentModelRepository = (*GormEquipmentModelRepository)(nil)
	_ reference.EquipmentRepository      = (*GormEquipmentRepository)(nil)
	_ reference.ActorRepository          = (*GormActorRepository)(nil)
)
