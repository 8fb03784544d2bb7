package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Ledger operation outcomes, the outcome attribute of the operation counters
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// ErrMeterNil is returned when an instrument set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// StockLevels is a point-in-time read of stock health
type StockLevels struct {
	// ReservedByLocation omits locations with nothing reserved
	ReservedByLocation map[uuid.UUID]int64
	LowStockRecords    int64
}

// StockSource reads stock levels for the stock gauges. It is called on every
// metric collection, so it should be a cheap aggregate.
type StockSource interface {
	StockLevels(ctx context.Context) (StockLevels, error)
}

type LedgerMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
	// Stock feeds the reserved-quantity and low-stock gauges. Without it the
	// gauges are not registered.
	Stock StockSource
}

// LedgerMetrics counts ledger operations, the units they move and the
// low-stock signals they raise.
type LedgerMetrics struct {
	operations *Counter
	unitsMoved *Counter
	lowStock   *Counter
	latency    *Histogram

	stock    metric.Registration
	stopOnce sync.Once
	logger   *zap.Logger
}

func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	lm := &LedgerMetrics{logger: cfg.Logger}
	if lm.logger == nil {
		lm.logger = zap.NewNop()
	}

	var errs, err error
	lm.operations, err = NewCounter(cfg.Meter, "spares_ledger_operations_total",
		"Ledger operations by transaction type and outcome", "{operation}")
	errs = multierr.Append(errs, err)
	lm.unitsMoved, err = NewCounter(cfg.Meter, "spares_ledger_units_moved_total",
		"Units moved by committed ledger operations", "{unit}")
	errs = multierr.Append(errs, err)
	lm.lowStock, err = NewCounter(cfg.Meter, "spares_low_stock_signals_total",
		"Low-stock signals raised after ledger operations", "{signal}")
	errs = multierr.Append(errs, err)
	lm.latency, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "spares_ledger_operation_duration_seconds",
		Description: "Ledger operation latency including the row lock wait",
		Unit:        "s",
		Boundaries:  LedgerDurationBuckets,
	})
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}

	if cfg.Stock != nil {
		if lm.stock, err = observeStock(cfg.Meter, cfg.Stock, lm.logger); err != nil {
			return nil, err
		}
	}
	return lm, nil
}

func observeStock(meter metric.Meter, source StockSource, logger *zap.Logger) (metric.Registration, error) {
	reserved, err := meter.Int64ObservableGauge("spares_inventory_reserved_quantity",
		metric.WithDescription("Reserved units per location"), metric.WithUnit("{unit}"))
	if err != nil {
		return nil, fmt.Errorf("gauge spares_inventory_reserved_quantity: %w", err)
	}
	lowRecords, err := meter.Int64ObservableGauge("spares_inventory_low_stock_records",
		metric.WithDescription("Inventory records at or below their minimum quantity"), metric.WithUnit("{record}"))
	if err != nil {
		return nil, fmt.Errorf("gauge spares_inventory_low_stock_records: %w", err)
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		levels, err := source.StockLevels(ctx)
		if err != nil {
			logger.Warn("Failed to read stock levels", zap.Error(err))
			return nil
		}
		for locationID, qty := range levels.ReservedByLocation {
			o.ObserveInt64(reserved, qty, metric.WithAttributes(AttrLocationID.String(locationID.String())))
		}
		o.ObserveInt64(lowRecords, levels.LowStockRecords)
		return nil
	}, reserved, lowRecords)
}

// RecordOperation records one ledger operation. Quantity is the signed
// quantity of the booked transaction; units moved only count when committed.
func (lm *LedgerMetrics) RecordOperation(ctx context.Context, txType, outcome string, quantity int, elapsed time.Duration) {
	kind := AttrTransactionType.String(txType)
	lm.operations.Inc(ctx, kind, AttrOutcome.String(outcome))
	lm.latency.RecordDuration(ctx, elapsed, kind, AttrOutcome.String(outcome))
	if outcome == OutcomeCommitted {
		lm.unitsMoved.Add(ctx, int64(abs(quantity)), kind)
	}
}

// RecordLowStock counts a low-stock signal raised at a location
func (lm *LedgerMetrics) RecordLowStock(ctx context.Context, locationID uuid.UUID, alertType string) {
	lm.lowStock.Inc(ctx, AttrLocationID.String(locationID.String()), AttrAlertType.String(alertType))
}

// Stop unregisters the stock gauges. Safe to call more than once.
func (lm *LedgerMetrics) Stop() error {
	var err error
	lm.stopOnce.Do(func() {
		if lm.stock != nil {
			err = lm.stock.Unregister()
		}
	})
	return err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
