package telemetry

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Alert delivery outcomes.
const (
	AlertDelivered    = "delivered"
	AlertDeduplicated = "deduplicated"
	AlertFailed       = "failed"
)

// NewPrometheusRegistry returns a registry with Go runtime, process and
// connection-pool collectors. sqlDB may be nil.
func NewPrometheusRegistry(sqlDB *sql.DB, dbName string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if sqlDB != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, dbName))
	}
	return reg
}

// PrometheusHandler serves the registry in the text exposition format.
func PrometheusHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AlertDeliveryMetrics counts low-stock alert deliveries per channel and outcome.
type AlertDeliveryMetrics struct {
	deliveries *prometheus.CounterVec
}

// NewAlertDeliveryMetrics registers the counters on reg. A nil registerer
// yields a no-op recorder.
func NewAlertDeliveryMetrics(reg prometheus.Registerer) *AlertDeliveryMetrics {
	if reg == nil {
		return &AlertDeliveryMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spares_stock_alert_deliveries_total",
		Help: "Low-stock alert deliveries by channel and outcome.",
	}, []string{"channel", "outcome"})
	reg.MustRegister(deliveries)
	return &AlertDeliveryMetrics{deliveries: deliveries}
}

// Observe records one delivery attempt.
func (m *AlertDeliveryMetrics) Observe(channel, outcome string) {
	if m == nil || m.deliveries == nil {
		return
	}
	if channel == "" {
		channel = "unknown"
	}
	m.deliveries.WithLabelValues(channel, outcome).Inc()
}
