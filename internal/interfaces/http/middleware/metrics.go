package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spares/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var bodySizeBuckets = []float64{128, 512, 1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20}

// HTTPMetrics records OpenTelemetry request metrics labelled by method and
// route pattern. It passes requests through untouched when meter is nil or
// an instrument cannot be created.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}

	var err, e error
	var requests *telemetry.Counter
	var latency, reqBytes, respBytes *telemetry.Histogram
	var inFlight metric.Int64UpDownCounter

	requests, e = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests served", "{request}")
	err = multierr.Append(err, e)
	latency, e = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_duration_seconds", Description: "HTTP request latency",
		Unit: "s", Boundaries: telemetry.HTTPDurationBuckets,
	})
	err = multierr.Append(err, e)
	reqBytes, e = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_size_bytes", Description: "HTTP request body size",
		Unit: "By", Boundaries: bodySizeBuckets,
	})
	err = multierr.Append(err, e)
	respBytes, e = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_response_size_bytes", Description: "HTTP response body size",
		Unit: "By", Boundaries: bodySizeBuckets,
	})
	err = multierr.Append(err, e)
	inFlight, e = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}"))
	err = multierr.Append(err, e)

	if err != nil {
		if logger != nil {
			logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		started := time.Now()
		inFlight.Add(ctx, 1)
		defer inFlight.Add(ctx, -1)

		c.Next()

		labels := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		requests.Inc(ctx, append(labels, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))...)
		latency.RecordDuration(ctx, time.Since(started), labels...)
		if n := c.Request.ContentLength; n > 0 {
			reqBytes.Record(ctx, float64(n), labels...)
		}
		if n := c.Writer.Size(); n > 0 {
			respBytes.Record(ctx, float64(n), labels...)
		}
	}
}

// PrometheusHTTPMetrics feeds the /metrics scrape with request counts by
// status class and latency. A nil registerer disables it.
func PrometheusHTTPMetrics(reg prometheus.Registerer) gin.HandlerFunc {
	if reg == nil {
		return passThrough
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spares_http_requests_total",
		Help: "HTTP requests by method, route and status class.",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spares_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: telemetry.HTTPDurationBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, latency)

	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		method, route := c.Request.Method, routePattern(c)
		requests.WithLabelValues(method, route, statusClass(c.Writer.Status())).Inc()
		latency.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
	}
}

// routePattern labels by the matched route, never the raw path
func routePattern(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unknown"
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
