package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

// InventoryRecord is the stock counter for one part type at one location.
// Counters change only through Allocate, Deallocate and AdjustStock, each of
// which returns the ledger entry describing the change.
type InventoryRecord struct {
	shared.AggregateRoot
	PartTypeID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_record_part_type_location,priority:1"`
	LocationID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_inventory_record_part_type_location,priority:2"`
	QuantityOnHand   int       `gorm:"not null;default:0"`
	QuantityReserved int       `gorm:"not null;default:0"`
	MinimumQuantity  int       `gorm:"not null;default:0"`
	ReorderQuantity  int       `gorm:"not null;default:0"`
	StorageDetail    string    `gorm:"type:varchar(100)"`
	Notes            string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// RecordSettings holds the fields of a record that are edited directly
type RecordSettings struct {
	MinimumQuantity int
	ReorderQuantity int
	StorageDetail   string
	Notes           string
	Tags            []string
}

// NewInventoryRecord creates an empty stock counter for a part type at a location
func NewInventoryRecord(partTypeID, locationID uuid.UUID, settings RecordSettings) (*InventoryRecord, error) {
	if partTypeID == uuid.Nil {
		return nil, shared.NewValidationError("Part type is required")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("Location is required")
	}

	record := &InventoryRecord{
		AggregateRoot: shared.NewAggregateRoot(),
		PartTypeID:    partTypeID,
		LocationID:    locationID,
	}
	if err := record.applySettings(settings); err != nil {
		return nil, err
	}
	return record, nil
}

// QuantityAvailable returns on-hand units not reserved
func (r *InventoryRecord) QuantityAvailable() int {
	return r.QuantityOnHand - r.QuantityReserved
}

// IsLowStock reports whether available stock is at or below the minimum
func (r *InventoryRecord) IsLowStock() bool {
	return r.QuantityAvailable() <= r.MinimumQuantity
}

// NeedsReorder reports whether the record is low on stock and has a reorder quantity
func (r *InventoryRecord) NeedsReorder() bool {
	return r.IsLowStock() && r.ReorderQuantity > 0
}

// Validate checks the counter invariants
func (r *InventoryRecord) Validate() error {
	if r.QuantityOnHand < 0 {
		return shared.NewValidationError("Quantity on hand cannot be negative")
	}
	if r.QuantityReserved < 0 {
		return shared.NewValidationError("Quantity reserved cannot be negative")
	}
	if r.QuantityReserved > r.QuantityOnHand {
		return shared.NewValidationError("Reserved quantity cannot exceed on-hand quantity")
	}
	if r.MinimumQuantity < 0 {
		return shared.NewValidationError("Minimum quantity cannot be negative")
	}
	if r.ReorderQuantity < 0 {
		return shared.NewValidationError("Reorder quantity cannot be negative")
	}
	if len(r.StorageDetail) > 100 {
		return shared.NewValidationError("Storage location detail cannot exceed 100 characters")
	}
	return nil
}

// UpdateSettings edits thresholds, storage detail, notes and tags.
// Quantities are untouched, but a raised minimum can still leave the record
// low on stock.
func (r *InventoryRecord) UpdateSettings(settings RecordSettings) error {
	candidate := *r
	if err := candidate.applySettings(settings); err != nil {
		return err
	}
	candidate.Touch(time.Now())
	*r = candidate
	r.afterMutation(nil)
	return nil
}

// CheckStockLevel runs the low-stock hook for a save that booked no ledger
// entry, such as a new record created without initial stock.
func (r *InventoryRecord) CheckStockLevel() {
	r.afterMutation(nil)
}

func (r *InventoryRecord) applySettings(settings RecordSettings) error {
	r.MinimumQuantity = settings.MinimumQuantity
	r.ReorderQuantity = settings.ReorderQuantity
	r.StorageDetail = settings.StorageDetail
	r.Notes = settings.Notes
	r.SetTags(settings.Tags)
	return r.Validate()
}

// Allocate reserves units for future use
func (r *InventoryRecord) Allocate(quantity int, reason string, actorID *uuid.UUID) (*Transaction, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Allocation quantity must be positive")
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	if available := r.QuantityAvailable(); quantity > available {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Cannot allocate %d units. Only %d available.", quantity, available))
	}

	before := r.QuantityReserved
	after := before + quantity
	tx := newTransaction(r.ID, TransactionTypeAllocation, quantity, before, after, reason, actorID, nil)
	return r.commit(tx, r.QuantityOnHand, after)
}

// Deallocate releases previously reserved units
func (r *InventoryRecord) Deallocate(quantity int, reason string, actorID *uuid.UUID) (*Transaction, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Deallocation quantity must be positive")
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	if quantity > r.QuantityReserved {
		return nil, shared.NewDomainError(shared.CodeInsufficientReservation,
			fmt.Sprintf("Cannot deallocate %d units. Only %d reserved.", quantity, r.QuantityReserved))
	}

	before := r.QuantityReserved
	after := before - quantity
	tx := newTransaction(r.ID, TransactionTypeDeallocation, -quantity, before, after, reason, actorID, nil)
	return r.commit(tx, r.QuantityOnHand, after)
}

// AdjustStock changes the on-hand quantity by delta.
// Check-in must be positive and check-out negative; adjustments may go either way.
func (r *InventoryRecord) AdjustStock(
	delta int,
	txType TransactionType,
	reason string,
	actorID *uuid.UUID,
	relatedEquipmentID *uuid.UUID,
) (*Transaction, error) {
	if !txType.IsStockAdjustment() {
		return nil, shared.NewDomainError(shared.CodeInvalidTransactionType, "Invalid transaction type for stock adjustment")
	}
	if err := validateReason(reason); err != nil {
		return nil, err
	}
	switch {
	case txType == TransactionTypeCheckIn && delta <= 0:
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Check-in quantity must be positive")
	case txType == TransactionTypeCheckOut && delta >= 0:
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Check-out quantity must be negative")
	}

	before := r.QuantityOnHand
	after := before + delta
	if after < 0 {
		return nil, shared.NewDomainError(shared.CodeNegativeStock,
			fmt.Sprintf("Cannot adjust stock by %d. Would result in negative inventory.", delta))
	}
	if after < r.QuantityReserved {
		return nil, shared.NewValidationError(
			fmt.Sprintf("Cannot adjust stock by %d. On-hand quantity would fall below the %d reserved units.", delta, r.QuantityReserved))
	}

	tx := newTransaction(r.ID, txType, delta, before, after, reason, actorID, relatedEquipmentID)
	return r.commit(tx, after, r.QuantityReserved)
}

// commit applies the new counters only when both the record and the ledger
// entry are valid, then runs the post-mutation hook.
func (r *InventoryRecord) commit(tx *Transaction, onHand, reserved int) (*Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	candidate := *r
	candidate.QuantityOnHand = onHand
	candidate.QuantityReserved = reserved
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	r.QuantityOnHand = onHand
	r.QuantityReserved = reserved
	r.Touch(tx.OccurredAt)
	r.afterMutation(tx)
	return tx, nil
}

// afterMutation is the post-mutation hook. It records a StockLowEvent when
// the record ends up at or below its minimum. tx is nil for settings edits.
func (r *InventoryRecord) afterMutation(tx *Transaction) {
	if r.IsLowStock() {
		r.Raise(NewStockLowEvent(r, tx))
	}
}
