package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/spares/backend/internal/domain/inventory"
	"github.com/spares/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Alert types carried by StockAlert
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockAlertNotifier is the outbound channel for low-stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a low-stock signal for one inventory record
type StockAlert struct {
	InventoryRecordID string `json:"inventory_record_id"`
	PartTypeID        string `json:"part_type_id"`
	LocationID        string `json:"location_id"`
	TransactionID     string `json:"transaction_id,omitempty"`
	QuantityOnHand    int    `json:"quantity_on_hand"`
	QuantityReserved  int    `json:"quantity_reserved"`
	QuantityAvailable int    `json:"quantity_available"`
	MinimumQuantity   int    `json:"minimum_quantity"`
	ReorderQuantity   int    `json:"reorder_quantity"`
	NeedsReorder      bool   `json:"needs_reorder"`
	AlertType         string `json:"alert_type"`
	OccurredAt        string `json:"occurred_at"`
}

// NewStockAlert builds the alert payload for a StockLowEvent
func NewStockAlert(event *inventory.StockLowEvent) StockAlert {
	alertType := AlertTypeLowStock
	if event.QuantityAvailable <= 0 {
		alertType = AlertTypeOutOfStock
	}
	var transactionID string
	if event.TransactionID != nil {
		transactionID = event.TransactionID.String()
	}
	return StockAlert{
		InventoryRecordID: event.InventoryRecordID.String(),
		PartTypeID:        event.PartTypeID.String(),
		LocationID:        event.LocationID.String(),
		TransactionID:     transactionID,
		QuantityOnHand:    event.QuantityOnHand,
		QuantityReserved:  event.QuantityReserved,
		QuantityAvailable: event.QuantityAvailable,
		MinimumQuantity:   event.MinimumQuantity,
		ReorderQuantity:   event.ReorderQuantity,
		NeedsReorder:      event.NeedsReorder,
		AlertType:         alertType,
		OccurredAt:        event.OccurredAt().UTC().Format(time.RFC3339Nano),
	}
}

// DedupeKey identifies repeats of the same alert for one record.
// An out-of-stock alert is not suppressed by an earlier low-stock one.
func (a StockAlert) DedupeKey() string {
	return a.InventoryRecordID + ":" + a.AlertType
}

// LowStockHandler handles StockLowEvent: it logs a warning and forwards an
// alert to the configured notifier
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockHandler creates a new handler for low-stock events
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLow}
}

// Handle processes a StockLowEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.StockLowEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockLow),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockLow, event.EventType())
	}

	h.logger.Warn("Low stock alert",
		zap.String("inventory_record_id", lowStock.InventoryRecordID.String()),
		zap.String("part_type_id", lowStock.PartTypeID.String()),
		zap.String("location_id", lowStock.LocationID.String()),
		zap.Int("available", lowStock.QuantityAvailable),
		zap.Int("minimum", lowStock.MinimumQuantity),
		zap.Bool("needs_reorder", lowStock.NeedsReorder),
	)

	if h.notifier == nil {
		return nil
	}

	alert := NewStockAlert(lowStock)
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// The ledger change is already committed; a lost alert is only logged
		h.logger.Error("failed to send stock alert notification",
			zap.String("inventory_record_id", alert.InventoryRecordID),
			zap.Error(err),
		)
		return nil
	}

	h.logger.Debug("stock alert notification sent",
		zap.String("inventory_record_id", alert.InventoryRecordID),
		zap.String("alert_type", alert.AlertType),
	)
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier is a notifier that only logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("part_type_id", alert.PartTypeID),
		zap.String("location_id", alert.LocationID),
		zap.Int("available_qty", alert.QuantityAvailable),
		zap.Int("minimum_qty", alert.MinimumQuantity),
		zap.Int("reorder_qty", alert.ReorderQuantity),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
