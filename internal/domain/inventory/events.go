package inventory

import (
	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

// AggregateTypeInventoryRecord names the aggregate in events
const AggregateTypeInventoryRecord = "InventoryRecord"

// EventTypeStockLow is raised after a mutation leaves a record at or below its minimum
const EventTypeStockLow = "inventory.stock_low"

// StockLowEvent describes a record in the low-stock state after it was saved.
// TransactionID is nil when the save booked no ledger entry.
type StockLowEvent struct {
	shared.EventHeader
	InventoryRecordID uuid.UUID  `json:"inventory_record_id"`
	PartTypeID        uuid.UUID  `json:"part_type_id"`
	LocationID        uuid.UUID  `json:"location_id"`
	TransactionID     *uuid.UUID `json:"transaction_id,omitempty"`
	QuantityOnHand    int        `json:"quantity_on_hand"`
	QuantityReserved  int        `json:"quantity_reserved"`
	QuantityAvailable int        `json:"quantity_available"`
	MinimumQuantity   int        `json:"minimum_quantity"`
	ReorderQuantity   int        `json:"reorder_quantity"`
	NeedsReorder      bool       `json:"needs_reorder"`
}

// NewStockLowEvent snapshots the record state. tx may be nil.
func NewStockLowEvent(record *InventoryRecord, tx *Transaction) *StockLowEvent {
	event := &StockLowEvent{
		EventHeader:       shared.NewEventHeader(EventTypeStockLow, AggregateTypeInventoryRecord, record.ID),
		InventoryRecordID: record.ID,
		PartTypeID:        record.PartTypeID,
		LocationID:        record.LocationID,
		QuantityOnHand:    record.QuantityOnHand,
		QuantityReserved:  record.QuantityReserved,
		QuantityAvailable: record.QuantityAvailable(),
		MinimumQuantity:   record.MinimumQuantity,
		ReorderQuantity:   record.ReorderQuantity,
		NeedsReorder:      record.NeedsReorder(),
	}
	if tx != nil {
		id := tx.ID
		event.TransactionID = &id
	}
	return event
}
