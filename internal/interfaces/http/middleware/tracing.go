package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spares/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures the otelgin server spans
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider replaces the global provider when set
	TracerProvider trace.TracerProvider
}

// Tracing starts one server span per request, named after the matched route
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher adds the request id and actor to the server span and flags
// 4xx responses, which otelgin leaves unset. Mount it after Tracing,
// RequestID and Actor.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		attrs := make([]attribute.KeyValue, 0, 2)
		if id := GetRequestID(c); id != "" {
			attrs = append(attrs, telemetry.SpanAttrRequestID.String(id))
		}
		if actor := GetActorID(c); actor != nil {
			attrs = append(attrs, telemetry.SpanAttrActorID.String(actor.String()))
		}
		span.SetAttributes(attrs...)

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		if last := c.Errors.Last(); last != nil {
			span.SetAttributes(attribute.String("error.message", last.Error()))
		}
	}
}

func passThrough(c *gin.Context) { c.Next() }
