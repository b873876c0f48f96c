package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures the OpenTelemetry SDK meter provider
type ProviderConfig struct {
	// ServiceName is reported in telemetry. Default: "sonido-aura".
	ServiceName string

	// ServiceVersion is reported in telemetry
	ServiceVersion string
}

// InitProvider installs an sdk MeterProvider backed by the Prometheus
// exporter as the global provider. The exporter registers with the default
// Prometheus registry, so promhttp.Handler serves its output.
//
// Returns a shutdown function to defer from main.
func InitProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "sonido-aura"
	}

	// schemaless: merging with resource.Default would conflict on schema URL
	res := resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}
