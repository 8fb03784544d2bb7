package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of service spans
const TracerName = "github.com/spares/backend/ledger"

// Span attributes of ledger operations
var (
	SpanAttrInventoryRecordID = attribute.Key("spares.inventory_record_id")
	SpanAttrTransactionID     = attribute.Key("spares.transaction_id")
	SpanAttrTransactionType   = attribute.Key("spares.transaction_type")
	SpanAttrQuantity          = attribute.Key("spares.quantity")
	SpanAttrActorID           = attribute.Key("spares.actor_id")
	SpanAttrRequestID         = attribute.Key("spares.request_id")
)

// StartServiceSpan starts an internal span named "<service>.<method>" on the
// global tracer provider. The caller ends it.
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks span as failed. Nil spans and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes adds attrs to span when it is recording
func SetAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetAttributes(attrs...)
}
