package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

// TransactionType represents the kind of quantity-affecting event
type TransactionType string

const (
	TransactionTypeCheckIn      TransactionType = "check_in"
	TransactionTypeCheckOut     TransactionType = "check_out"
	TransactionTypeAdjustment   TransactionType = "adjustment"
	TransactionTypeAllocation   TransactionType = "allocation"
	TransactionTypeDeallocation TransactionType = "deallocation"
	// TransactionTypeTransfer is part of the taxonomy but no operation produces it.
	// A two-sided move between locations is not implemented.
	TransactionTypeTransfer TransactionType = "transfer"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is part of the taxonomy
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeCheckIn,
		TransactionTypeCheckOut,
		TransactionTypeAdjustment,
		TransactionTypeAllocation,
		TransactionTypeDeallocation,
		TransactionTypeTransfer:
		return true
	}
	return false
}

// IsImplemented returns false for types no ledger operation can create
func (t TransactionType) IsImplemented() bool {
	return t.IsValid() && t != TransactionTypeTransfer
}

// IsStockAdjustment returns true for the types accepted by AdjustStock
func (t TransactionType) IsStockAdjustment() bool {
	switch t {
	case TransactionTypeCheckIn, TransactionTypeCheckOut, TransactionTypeAdjustment:
		return true
	}
	return false
}

// AffectsReservation returns true if the type moves the reserved counter
// rather than the on-hand counter
func (t TransactionType) AffectsReservation() bool {
	return t == TransactionTypeAllocation || t == TransactionTypeDeallocation
}

const maxReasonLength = 200

// Transaction is an immutable ledger entry for one quantity change.
// Only Notes may change after creation.
type Transaction struct {
	shared.AuditableEntity
	InventoryRecordID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_transaction_record_occurred,priority:1"`
	Type               TransactionType `gorm:"column:transaction_type;type:varchar(20);not null;index"`
	Quantity           int             `gorm:"not null"`
	QuantityBefore     int             `gorm:"not null"`
	QuantityAfter      int             `gorm:"not null"`
	ActorID            *uuid.UUID      `gorm:"type:uuid;index"`
	OccurredAt         time.Time       `gorm:"not null;index:idx_inventory_transaction_record_occurred,priority:2"`
	Reason             string          `gorm:"type:varchar(200);not null"`
	RelatedEquipmentID *uuid.UUID      `gorm:"type:uuid;index"`
	Notes              string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "inventory_transactions"
}

func newTransaction(
	recordID uuid.UUID,
	txType TransactionType,
	quantity, before, after int,
	reason string,
	actorID, equipmentID *uuid.UUID,
) *Transaction {
	entity := shared.NewAuditableEntity()
	return &Transaction{
		AuditableEntity:    entity,
		InventoryRecordID:  recordID,
		Type:               txType,
		Quantity:           quantity,
		QuantityBefore:     before,
		QuantityAfter:      after,
		ActorID:            nonNilID(actorID),
		OccurredAt:         entity.CreatedAt,
		Reason:             reason,
		RelatedEquipmentID: nonNilID(equipmentID),
	}
}

// Validate checks the bookkeeping invariant of a ledger entry
func (t *Transaction) Validate() error {
	if t.InventoryRecordID == uuid.Nil {
		return shared.NewValidationError("Transaction must reference an inventory record")
	}
	if !t.Type.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidTransactionType, "Unknown transaction type: "+t.Type.String())
	}
	if t.QuantityBefore < 0 || t.QuantityAfter < 0 {
		return shared.NewValidationError("Quantity before and after must not be negative")
	}
	if t.QuantityAfter != t.QuantityBefore+t.Quantity {
		return shared.NewValidationError("Quantity after must equal quantity before plus quantity")
	}
	return validateReason(t.Reason)
}

// AttachNotes amends the free-text notes, the only mutable field
func (t *Transaction) AttachNotes(notes string) {
	t.Notes = notes
	t.Touch(time.Now())
}

func validateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("Reason is required")
	}
	if len(reason) > maxReasonLength {
		return shared.NewValidationError("Reason cannot exceed 200 characters")
	}
	return nil
}

func nonNilID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}
