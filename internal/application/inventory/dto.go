package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/catalog"
	"github.com/spares/backend/internal/domain/inventory"
)

// RecordResponse represents an inventory record in API responses
type RecordResponse struct {
	ID                uuid.UUID `json:"id"`
	PartTypeID        uuid.UUID `json:"part_type_id"`
	LocationID        uuid.UUID `json:"location_id"`
	QuantityOnHand    int       `json:"quantity_on_hand"`
	QuantityReserved  int       `json:"quantity_reserved"`
	QuantityAvailable int       `json:"quantity_available"`
	MinimumQuantity   int       `json:"minimum_quantity"`
	ReorderQuantity   int       `json:"reorder_quantity"`
	IsLowStock        bool      `json:"is_low_stock"`
	NeedsReorder      bool      `json:"needs_reorder"`
	StorageDetail     string    `json:"storage_detail"`
	Notes             string    `json:"notes"`
	Tags              []string  `json:"tags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	InventoryRecordID  uuid.UUID  `json:"inventory_record_id"`
	TransactionType    string     `json:"transaction_type"`
	Quantity           int        `json:"quantity"`
	QuantityBefore     int        `json:"quantity_before"`
	QuantityAfter      int        `json:"quantity_after"`
	ActorID            *uuid.UUID `json:"actor_id,omitempty"`
	RelatedEquipmentID *uuid.UUID `json:"related_equipment_id,omitempty"`
	Reason             string     `json:"reason"`
	Notes              string     `json:"notes"`
	OccurredAt         time.Time  `json:"occurred_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// LedgerResult is returned by every ledger operation: the record after the
// change and the id of the transaction that describes it
type LedgerResult struct {
	Record        RecordResponse `json:"inventory"`
	TransactionID uuid.UUID      `json:"transaction_id"`
}

// CreateRecordRequest represents a request to start tracking a part type at a location
type CreateRecordRequest struct {
	PartTypeID      uuid.UUID  `json:"part_type_id" binding:"required"`
	LocationID      uuid.UUID  `json:"location_id" binding:"required"`
	InitialQuantity int        `json:"initial_quantity" binding:"gte=0"`
	MinimumQuantity int        `json:"minimum_quantity" binding:"gte=0"`
	ReorderQuantity int        `json:"reorder_quantity" binding:"gte=0"`
	StorageDetail   string     `json:"storage_detail" binding:"max=100"`
	Notes           string     `json:"notes"`
	Tags            []string   `json:"tags"`
	ActorID         *uuid.UUID `json:"-"`
}

// UpdateRecordRequest represents a request to edit record settings.
// Quantities are changed through ledger operations only.
type UpdateRecordRequest struct {
	MinimumQuantity int      `json:"minimum_quantity" binding:"gte=0"`
	ReorderQuantity int      `json:"reorder_quantity" binding:"gte=0"`
	StorageDetail   string   `json:"storage_detail" binding:"max=100"`
	Notes           string   `json:"notes"`
	Tags            []string `json:"tags"`
}

// ReservationRequest is the input of Allocate and Deallocate
type ReservationRequest struct {
	Quantity int
	Reason   string
	ActorID  *uuid.UUID
}

// StockMovementRequest is the input of CheckIn and CheckOut.
// Quantity is always positive; CheckOut negates it.
type StockMovementRequest struct {
	Quantity           int
	Reason             string
	ActorID            *uuid.UUID
	RelatedEquipmentID *uuid.UUID
}

// AdjustStockRequest is the input of AdjustStock
type AdjustStockRequest struct {
	Delta              int
	Type               inventory.TransactionType
	Reason             string
	ActorID            *uuid.UUID
	RelatedEquipmentID *uuid.UUID
}

// RecordListFilter represents filter options for the record list
type RecordListFilter struct {
	Search         string
	PartTypeID     *uuid.UUID
	LocationID     *uuid.UUID
	Category       catalog.Category
	ManufacturerID *uuid.UUID
	LowStock       *bool
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
}

// TransactionListFilter represents filter options for the ledger list
type TransactionListFilter struct {
	Search             string
	InventoryRecordID  *uuid.UUID
	PartTypeID         *uuid.UUID
	LocationID         *uuid.UUID
	Type               inventory.TransactionType
	ActorID            *uuid.UUID
	RelatedEquipmentID *uuid.UUID
	From               *time.Time
	To                 *time.Time
	Page               int
	PageSize           int
	OrderBy            string
	OrderDir           string
}

// ToRecordResponse converts a domain record to a response
func ToRecordResponse(record *inventory.InventoryRecord) RecordResponse {
	return RecordResponse{
		ID:                record.ID,
		PartTypeID:        record.PartTypeID,
		LocationID:        record.LocationID,
		QuantityOnHand:    record.QuantityOnHand,
		QuantityReserved:  record.QuantityReserved,
		QuantityAvailable: record.QuantityAvailable(),
		MinimumQuantity:   record.MinimumQuantity,
		ReorderQuantity:   record.ReorderQuantity,
		IsLowStock:        record.IsLowStock(),
		NeedsReorder:      record.NeedsReorder(),
		StorageDetail:     record.StorageDetail,
		Notes:             record.Notes,
		Tags:              record.GetTags(),
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

// ToRecordResponses converts a slice of domain records to responses
func ToRecordResponses(records []inventory.InventoryRecord) []RecordResponse {
	responses := make([]RecordResponse, len(records))
	for i := range records {
		responses[i] = ToRecordResponse(&records[i])
	}
	return responses
}

// ToTransactionResponse converts a domain transaction to a response
func ToTransactionResponse(tx *inventory.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                 tx.ID,
		InventoryRecordID:  tx.InventoryRecordID,
		TransactionType:    tx.Type.String(),
		Quantity:           tx.Quantity,
		QuantityBefore:     tx.QuantityBefore,
		QuantityAfter:      tx.QuantityAfter,
		ActorID:            tx.ActorID,
		RelatedEquipmentID: tx.RelatedEquipmentID,
		Reason:             tx.Reason,
		Notes:              tx.Notes,
		OccurredAt:         tx.OccurredAt,
		CreatedAt:          tx.CreatedAt,
		UpdatedAt:          tx.UpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions to responses
func ToTransactionResponses(txs []inventory.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i])
	}
	return responses
}
