package telemetry

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// DBMetricsConfig tunes the statement instruments. SlowQueryThreshold
// defaults to 200ms.
type DBMetricsConfig struct {
	SlowQueryThreshold time.Duration
}

// DBMetrics counts and times the statements gorm issues. Row-lock reads get
// their own histogram: every ledger mutation starts with one, so contention
// on hot records shows there first.
type DBMetrics struct {
	statements *Counter
	failures   *Counter
	slow       *Counter
	latency    *Histogram
	lockWait   *Histogram
	slowAfter  time.Duration

	meter    metric.Meter
	pool     metric.Registration
	stopOnce sync.Once
}

func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &DBMetrics{meter: meter, slowAfter: cfg.SlowQueryThreshold}
	if m.slowAfter <= 0 {
		m.slowAfter = defaultSlowQueryThreshold
	}

	var errs, err error
	m.statements, err = NewCounter(meter, "db_query_total", "Database statements by operation", "{query}")
	errs = multierr.Append(errs, err)
	m.failures, err = NewCounter(meter, "db_query_errors_total", "Failed database statements by operation", "{query}")
	errs = multierr.Append(errs, err)
	m.slow, err = NewCounter(meter, "db_slow_query_total", "Statements slower than the slow-query threshold", "{query}")
	errs = multierr.Append(errs, err)
	m.latency, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	errs = multierr.Append(errs, err)
	m.lockWait, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_row_lock_duration_seconds",
		Description: "Latency of SELECT ... FOR UPDATE reads in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}
	return m, nil
}

// ObservePool reports pool.Stats() on every collection until Stop
func (m *DBMetrics) ObservePool(pool *sql.DB) error {
	conns, err := m.meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("gauge db_pool_connections: %w", err)
	}
	maxConns, err := m.meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("gauge db_pool_connections_max: %w", err)
	}
	waits, err := m.meter.Int64ObservableCounter("db_pool_wait_count",
		metric.WithDescription("Connections waited for since startup"), metric.WithUnit("{wait}"))
	if err != nil {
		return fmt.Errorf("counter db_pool_wait_count: %w", err)
	}

	m.pool, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := pool.Stats()
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		for state, n := range map[string]int{
			"idle":   stats.Idle,
			"in_use": stats.InUse,
			"open":   stats.OpenConnections,
		} {
			o.ObserveInt64(conns, int64(n), metric.WithAttributes(AttrDBState.String(state)))
		}
		return nil
	}, conns, maxConns, waits)
	return err
}

// Stop unregisters the pool gauges. Safe to call more than once.
func (m *DBMetrics) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		if m.pool != nil {
			err = m.pool.Unregister()
		}
	})
	return err
}

// QueryObservation describes one finished statement
type QueryObservation struct {
	Operation string
	Table     string
	Duration  time.Duration
	Err       error
	RowLocked bool
}

// RecordQuery records a finished statement. A missing row is not a failure.
func (m *DBMetrics) RecordQuery(ctx context.Context, obs QueryObservation) {
	operation := strings.ToUpper(obs.Operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	table := cmp.Or(obs.Table, "unknown")
	attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(table)}

	m.statements.Inc(ctx, attrs...)
	m.latency.RecordDuration(ctx, obs.Duration, attrs...)
	if obs.Err != nil && !errors.Is(obs.Err, gorm.ErrRecordNotFound) {
		m.failures.Inc(ctx, attrs...)
	}
	if obs.RowLocked {
		m.lockWait.RecordDuration(ctx, obs.Duration, AttrDBTable.String(table))
	}
	if obs.Duration > m.slowAfter {
		m.slow.Inc(ctx, AttrDBTable.String(table))
	}
}

// DBMetricsPlugin is a gorm plugin feeding DBMetrics
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

func (p *DBMetricsPlugin) Name() string {
	return "spares_db_metrics"
}

func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "spares_metrics", p.record)
}

func (p *DBMetricsPlugin) record(db *gorm.DB, op string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	elapsed, _ := queryElapsed(ctx)
	p.metrics.RecordQuery(ctx, QueryObservation{
		Operation: statementVerb(op, db.Statement.SQL.String()),
		Table:     db.Statement.Table,
		Duration:  elapsed,
		Err:       db.Error,
		RowLocked: isRowLocked(db),
	})
}

// statementVerb maps a gorm callback chain to the SQL verb it issued. Raw and
// row chains are read from the statement text.
func statementVerb(chain, statement string) string {
	switch chain {
	case "create":
		return "INSERT"
	case "query":
		return "SELECT"
	case "update":
		return "UPDATE"
	case "delete":
		return "DELETE"
	}
	statement = strings.ToUpper(strings.TrimSpace(statement))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(statement, verb) {
			return verb
		}
	}
	return "OTHER"
}

// RegisterDBMetrics installs statement and pool metrics on db. It returns
// nil when the meter provider is disabled; call Stop on shutdown otherwise.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if mp == nil || !mp.IsEnabled() {
		return nil, nil
	}
	metrics, err := NewDBMetrics(mp.Meter("spares.db"), cfg)
	if err != nil {
		return nil, err
	}
	pool, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := metrics.ObservePool(pool); err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(metrics)); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", metrics.slowAfter))
	}
	return metrics, nil
}
