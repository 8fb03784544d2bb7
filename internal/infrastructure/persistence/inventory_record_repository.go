package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lowStockCondition mirrors InventoryRecord.IsLowStock
const lowStockCondition = "(inventory_records.quantity_on_hand - inventory_records.quantity_reserved) <= inventory_records.minimum_quantity"

// GormInventoryRecordRepository implements inventory.RecordRepository using GORM
type GormInventoryRecordRepository struct {
	db *gorm.DB
}

// NewGormInventoryRecordRepository creates a new GormInventoryRecordRepository
func NewGormInventoryRecordRepository(db *gorm.DB) *GormInventoryRecordRepository {
	return &GormInventoryRecordRepository{db: db}
}

// FindByID finds an inventory record by its ID
func (r *GormInventoryRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// FindByIDForUpdate loads a record with SELECT ... FOR UPDATE.
// Must be called inside a transaction; the lock is released on commit or rollback.
func (r *GormInventoryRecordRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// FindByPartTypeAndLocation finds the record for a part type at a location
func (r *GormInventoryRecordRepository) FindByPartTypeAndLocation(ctx context.Context, partTypeID, locationID uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("part_type_id = ? AND location_id = ?", partTypeID, locationID).
		First(&record).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// FindAll finds records matching the filter
func (r *GormInventoryRecordRepository) FindAll(ctx context.Context, filter inventory.RecordFilter) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	query := r.applyFilter(r.db.WithContext(ctx), filter).Select("inventory_records.*")

	query = paginate(recordSort.apply(query, filter.Filter), filter.Filter)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count counts records matching the filter
func (r *GormInventoryRecordRepository) Count(ctx context.Context, filter inventory.RecordFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx), filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates a record after checking its invariants
func (r *GormInventoryRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Save(record).Error)
}

// Delete deletes a record
func (r *GormInventoryRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.InventoryRecord{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByPartType checks whether any record references the part type
func (r *GormInventoryRecordRepository) ExistsByPartType(ctx context.Context, partTypeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "part_type_id = ?", partTypeID)
}

// ExistsByLocation checks whether any record references the location
func (r *GormInventoryRecordRepository) ExistsByLocation(ctx context.Context, locationID uuid.UUID) (bool, error) {
	return r.exists(ctx, "location_id = ?", locationID)
}

func (r *GormInventoryRecordRepository) exists(ctx context.Context, cond string, arg uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
		Where(cond, arg).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumOnHandByPartType sums on-hand quantity across locations
func (r *GormInventoryRecordRepository) SumOnHandByPartType(ctx context.Context, partTypeID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
		Select("COALESCE(SUM(quantity_on_hand), 0)").
		Where("part_type_id = ?", partTypeID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindLocationsWithStock returns distinct locations holding on-hand stock of the part type
func (r *GormInventoryRecordRepository) FindLocationsWithStock(ctx context.Context, partTypeID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}).
		Where("part_type_id = ? AND quantity_on_hand > 0", partTypeID).
		Distinct().
		Order("location_id").
		Pluck("location_id", &ids).Error; err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (r *GormInventoryRecordRepository) applyFilter(query *gorm.DB, filter inventory.RecordFilter) *gorm.DB {
	query = query.Model(&inventory.InventoryRecord{})

	needsPartType := filter.Search != "" || filter.Category != "" || filter.ManufacturerID != nil
	if needsPartType {
		query = query.Joins("JOIN part_types ON part_types.id = inventory_records.part_type_id")
	}
	if filter.Search != "" {
		query = query.Joins("JOIN locations ON locations.id = inventory_records.location_id")
		query = applySearch(query, filter.Search,
			"part_types.name", "part_types.part_number", "locations.name", "inventory_records.storage_detail")
	}

	if filter.PartTypeID != nil {
		query = query.Where("inventory_records.part_type_id = ?", *filter.PartTypeID)
	}
	if filter.LocationID != nil {
		query = query.Where("inventory_records.location_id = ?", *filter.LocationID)
	}
	if filter.Category != "" {
		query = query.Where("part_types.category = ?", filter.Category)
	}
	if filter.ManufacturerID != nil {
		query = query.Where("part_types.manufacturer_id = ?", *filter.ManufacturerID)
	}
	if filter.LowStock != nil {
		if *filter.LowStock {
			query = query.Where(lowStockCondition)
		} else {
			query = query.Where("NOT " + lowStockCondition)
		}
	}
	return query
}

var _ inventory.RecordRepository = (*GormInventoryRecordRepository)(nil)
