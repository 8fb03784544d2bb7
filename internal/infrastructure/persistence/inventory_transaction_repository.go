package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository is the append-only ledger store.
// It has no general update or delete.
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormInventoryTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	var tx inventory.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &tx, nil
}

// FindAll finds transactions matching the filter, newest first by default
func (r *GormInventoryTransactionRepository) FindAll(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	var txs []inventory.Transaction
	query := r.applyFilter(r.db.WithContext(ctx), filter)

	query = paginate(transactionSort.apply(query, filter.Filter), filter.Filter)

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Count counts transactions matching the filter
func (r *GormInventoryTransactionRepository) Count(ctx context.Context, filter inventory.TransactionFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx), filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create appends a transaction after checking its bookkeeping
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Create(tx).Error)
}

// UpdateNotes amends the notes of a transaction. No other column is written
// apart from updated_at.
func (r *GormInventoryTransactionRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	result := r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"notes":      notes,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByRecord counts transactions for an inventory record
func (r *GormInventoryTransactionRepository) CountByRecord(ctx context.Context, recordID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("inventory_record_id = ?", recordID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClearActor nulls the actor on every transaction by the actor
func (r *GormInventoryTransactionRepository) ClearActor(ctx context.Context, actorID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("actor_id = ?", actorID).
		UpdateColumn("actor_id", nil).Error
}

// ClearEquipment nulls the related equipment on every transaction
func (r *GormInventoryTransactionRepository) ClearEquipment(ctx context.Context, equipmentID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("related_equipment_id = ?", equipmentID).
		UpdateColumn("related_equipment_id", nil).Error
}

func (r *GormInventoryTransactionRepository) applyFilter(query *gorm.DB, filter inventory.TransactionFilter) *gorm.DB {
	query = query.Model(&inventory.Transaction{})
	query = applySearch(query, filter.Search, "reason", "notes")

	if filter.InventoryRecordID != nil {
		query = query.Where("inventory_record_id = ?", *filter.InventoryRecordID)
	}
	if filter.PartTypeID != nil {
		query = query.Where("inventory_record_id IN (SELECT id FROM inventory_records WHERE part_type_id = ?)", *filter.PartTypeID)
	}
	if filter.LocationID != nil {
		query = query.Where("inventory_record_id IN (SELECT id FROM inventory_records WHERE location_id = ?)", *filter.LocationID)
	}
	if filter.Type != "" {
		query = query.Where("transaction_type = ?", filter.Type)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.RelatedEquipmentID != nil {
		query = query.Where("related_equipment_id = ?", *filter.RelatedEquipmentID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}
	return query
}

var _ inventory.TransactionRepository = (*GormInventoryTransactionRepository)(nil)
