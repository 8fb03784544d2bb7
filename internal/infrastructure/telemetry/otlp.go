// Package telemetry wires the ledger's OpenTelemetry signals (traces,
// metrics and logs) and its Prometheus scrape endpoint.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const shutdownTimeout = 10 * time.Second

// Exporter says where every OTLP signal is sent and which service it
// describes. All three signals share one collector.
type Exporter struct {
	Endpoint       string
	Insecure       bool // plaintext gRPC, development only
	ServiceName    string
	ServiceVersion string
}

// resource describes the service on every exported signal. An empty version
// reports as "dev".
func (e Exporter) resource() (*resource.Resource, error) {
	version := e.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(e.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	return res, nil
}

// shutdownWithin runs stop with ctx bounded by shutdownTimeout
func shutdownWithin(ctx context.Context, signal string, stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		return fmt.Errorf("shutdown %s provider: %w", signal, err)
	}
	return nil
}
