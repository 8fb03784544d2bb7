package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/shared"
)

// RecordRepository defines the interface for inventory record persistence
type RecordRepository interface {
	// FindByID finds an inventory record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryRecord, error)

	// FindByIDForUpdate loads a record under a row lock held until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryRecord, error)

	// FindByPartTypeAndLocation finds the record for a part type at a location
	FindByPartTypeAndLocation(ctx context.Context, partTypeID, locationID uuid.UUID) (*InventoryRecord, error)

	// FindAll finds records matching the filter
	FindAll(ctx context.Context, filter RecordFilter) ([]InventoryRecord, error)

	// Count counts records matching the filter
	Count(ctx context.Context, filter RecordFilter) (int64, error)

	// Save creates or updates a record after checking its invariants
	Save(ctx context.Context, record *InventoryRecord) error

	// Delete deletes a record; callers check transaction history first
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByPartType checks whether any record references the part type
	ExistsByPartType(ctx context.Context, partTypeID uuid.UUID) (bool, error)

	// ExistsByLocation checks whether any record references the location
	ExistsByLocation(ctx context.Context, locationID uuid.UUID) (bool, error)

	// SumOnHandByPartType sums on-hand quantity across locations, zero if none
	SumOnHandByPartType(ctx context.Context, partTypeID uuid.UUID) (int64, error)

	// FindLocationsWithStock returns distinct locations holding on-hand stock of the part type
	FindLocationsWithStock(ctx context.Context, partTypeID uuid.UUID) ([]uuid.UUID, error)
}

// TransactionRepository is the append-only ledger store.
// There is no general update or delete.
type TransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindAll finds transactions matching the filter, newest first
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, error)

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter TransactionFilter) (int64, error)

	// Create appends a transaction
	Create(ctx context.Context, tx *Transaction) error

	// UpdateNotes amends the notes of a transaction, the only mutable field
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error

	// CountByRecord counts transactions for an inventory record
	CountByRecord(ctx context.Context, recordID uuid.UUID) (int64, error)

	// ClearActor nulls the actor reference on every transaction by the actor
	ClearActor(ctx context.Context, actorID uuid.UUID) error

	// ClearEquipment nulls the related equipment reference on every transaction
	ClearEquipment(ctx context.Context, equipmentID uuid.UUID) error
}

// RecordFilter extends shared.Filter with record specific filters.
// Search matches part type name, part number, location name and storage detail.
type RecordFilter struct {
	shared.Filter
	PartTypeID     *uuid.UUID
	LocationID     *uuid.UUID
	Category       catalog.Category
	ManufacturerID *uuid.UUID
	LowStock       *bool
}

// TransactionFilter extends shared.Filter with transaction specific filters.
// Search matches reason and notes.
type TransactionFilter struct {
	shared.Filter
	InventoryRecordID  *uuid.UUID
	PartTypeID         *uuid.UUID
	LocationID         *uuid.UUID
	Type               TransactionType
	ActorID            *uuid.UUID
	RelatedEquipmentID *uuid.UUID
	From               *time.Time
	To                 *time.Time
}
