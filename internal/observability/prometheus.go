// Package observability wires the ingest metric instruments to a Prometheus
// scrape endpoint through the OTel metric SDK.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies the uvingest instrumentation scope.
const meterName = "github.com/Sumatoshi-tech/uvingest"

// NewPrometheus creates a Prometheus registry with an OTel metric exporter
// attached and returns the scrape handler together with the meter that
// instruments should be created from. Each call creates an independent
// registry to avoid collector conflicts when called multiple times.
func NewPrometheus() (http.Handler, metric.Meter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), provider.Meter(meterName), nil
}
