package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPartTypeRepository implements catalog.PartTypeRepository using GORM
type GormPartTypeRepository struct {
	db *gorm.DB
}

// NewGormPartTypeRepository creates a new GormPartTypeRepository
func NewGormPartTypeRepository(db *gorm.DB) *GormPartTypeRepository {
	return &GormPartTypeRepository{db: db}
}

// FindByID finds a part type by its ID
func (r *GormPartTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PartType, error) {
	var pt catalog.PartType
	if err := r.db.WithContext(ctx).First(&pt, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	if err := r.loadCompatibleModels(ctx, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// FindBySlug finds a part type by its slug
func (r *GormPartTypeRepository) FindBySlug(ctx context.Context, slug string) (*catalog.PartType, error) {
	var pt catalog.PartType
	if err := r.db.WithContext(ctx).First(&pt, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	if err := r.loadCompatibleModels(ctx, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// FindAll finds part types matching the filter
func (r *GormPartTypeRepository) FindAll(ctx context.Context, filter catalog.PartTypeFilter) ([]catalog.PartType, error) {
	var items []catalog.PartType
	query := r.applyFilter(r.db.WithContext(ctx), filter).
		Select("part_types.*")
	query = paginate(r.applyOrder(query, filter.Filter), filter.Filter)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	if err := r.loadCompatibleModelsBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts part types matching the filter
func (r *GormPartTypeRepository) Count(ctx context.Context, filter catalog.PartTypeFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx), filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates a part type and replaces its compatible model links
func (r *GormPartTypeRepository) Save(ctx context.Context, pt *catalog.PartType) error {
	if err := pt.Validate(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(pt).Error; err != nil {
			return err
		}
		if err := tx.Where("part_type_id = ?", pt.ID).Delete(&catalog.CompatibleModel{}).Error; err != nil {
			return err
		}
		if len(pt.CompatibleModelIDs) == 0 {
			return nil
		}
		links := make([]catalog.CompatibleModel, len(pt.CompatibleModelIDs))
		for i, modelID := range pt.CompatibleModelIDs {
			links[i] = catalog.CompatibleModel{PartTypeID: pt.ID, EquipmentModelID: modelID}
		}
		return tx.Create(&links).Error
	})
	return translateError(err)
}

// Delete deletes a part type and its compatible model links
func (r *GormPartTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("part_type_id = ?", id).Delete(&catalog.CompatibleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.PartType{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	return translateError(err)
}

// ExistsByManufacturer checks whether any part type references the manufacturer
func (r *GormPartTypeRepository) ExistsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.PartType{}).
		Where("manufacturer_id = ?", manufacturerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RemoveCompatibleModel drops every link to the equipment model
func (r *GormPartTypeRepository) RemoveCompatibleModel(ctx context.Context, equipmentModelID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("equipment_model_id = ?", equipmentModelID).
		Delete(&catalog.CompatibleModel{}).Error
}

func (r *GormPartTypeRepository) applyFilter(query *gorm.DB, filter catalog.PartTypeFilter) *gorm.DB {
	query = query.Model(&catalog.PartType{}).
		Joins("LEFT JOIN manufacturers ON manufacturers.id = part_types.manufacturer_id")

	query = applySearch(query, filter.Search,
		"part_types.name", "part_types.part_number", "part_types.description", "manufacturers.name")

	if filter.ManufacturerID != nil {
		query = query.Where("part_types.manufacturer_id = ?", *filter.ManufacturerID)
	}
	if filter.Category != "" {
		query = query.Where("part_types.category = ?", filter.Category)
	}
	if filter.CompatibleModelID != nil {
		query = query.Where(
			"part_types.id IN (SELECT part_type_id FROM part_type_compatible_models WHERE equipment_model_id = ?)",
			*filter.CompatibleModelID,
		)
	}
	return query
}

// applyOrder defaults to category, manufacturer name, name
func (r *GormPartTypeRepository) applyOrder(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if partTypeSort.has(filter.OrderBy) {
		return partTypeSort.apply(query, filter)
	}
	return query.Order("part_types.category ASC").
		Order("manufacturers.name ASC").
		Order("part_types.name ASC")
}

func (r *GormPartTypeRepository) loadCompatibleModels(ctx context.Context, pt *catalog.PartType) error {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&catalog.CompatibleModel{}).
		Where("part_type_id = ?", pt.ID).
		Order("equipment_model_id").
		Pluck("equipment_model_id", &ids).Error; err != nil {
		return err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	pt.CompatibleModelIDs = ids
	return nil
}

func (r *GormPartTypeRepository) loadCompatibleModelsBatch(ctx context.Context, items []catalog.PartType) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
		items[i].CompatibleModelIDs = []uuid.UUID{}
	}

	var links []catalog.CompatibleModel
	if err := r.db.WithContext(ctx).
		Where("part_type_id IN ?", ids).
		Order("equipment_model_id").
		Find(&links).Error; err != nil {
		return err
	}

	byPartType := make(map[uuid.UUID][]uuid.UUID, len(items))
	for _, link := range links {
		byPartType[link.PartTypeID] = append(byPartType[link.PartTypeID], link.EquipmentModelID)
	}
	for i := range items {
		if linked, ok := byPartType[items[i].ID]; ok {
			items[i].CompatibleModelIDs = linked
		}
	}
	return nil
}

var _ catalog.PartTypeRepository = (*GormPartTypeRepository)(nil)
