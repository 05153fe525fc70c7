package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName = "lingogate"
	MeterName   = "lingogate"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	EnableMetrics  bool
	EnableTracing  bool
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig(version string) *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	traceExporter := "none"
	if env == "development" {
		traceExporter = "stdout"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    env,
		TraceExporter:  traceExporter,
		EnableMetrics:  true,
		EnableTracing:  true,
	}
}

// InitializeOTel sets up tracing and metrics providers. The Prometheus
// exporter backs /metrics; traces go to stdout in development only.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		var opts []sdktrace.TracerProviderOption
		opts = append(opts, sdktrace.WithResource(res))

		if cfg.TraceExporter == "stdout" {
			exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
			if err != nil {
				return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
			}
			opts = append(opts, sdktrace.WithBatcher(exporter))
		}

		providers.TracerProvider = sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(providers.TracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		providers.Tracer = providers.TracerProvider.Tracer(MeterName)
	}

	if cfg.EnableMetrics {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		otel.SetMeterProvider(providers.MeterProvider)
		providers.Meter = providers.MeterProvider.Meter(MeterName)
		providers.PrometheusHTTP = promhttp.Handler()
	}

	return providers, nil
}

// BusinessMetrics holds the domain-level instruments
type BusinessMetrics struct {
	TranslationsTotal   metric.Int64Counter
	TranslationDuration metric.Float64Histogram
	LicenseDecisions    metric.Int64Counter
	UsersProvisioned    metric.Int64Counter
	ActivationsTotal    metric.Int64Counter
	PaymentFailures     metric.Int64Counter
}

// CreateBusinessMetrics registers the domain instruments on the meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	translations, err := meter.Int64Counter("translations_total",
		metric.WithDescription("Translation requests by outcome"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("translation_duration_seconds",
		metric.WithDescription("End-to-end translation request duration"))
	if err != nil {
		return nil, err
	}

	decisions, err := meter.Int64Counter("license_decisions_total",
		metric.WithDescription("License evaluator decisions by reason"))
	if err != nil {
		return nil, err
	}

	provisioned, err := meter.Int64Counter("users_provisioned_total",
		metric.WithDescription("User records created on first license check"))
	if err != nil {
		return nil, err
	}

	activations, err := meter.Int64Counter("activations_total",
		metric.WithDescription("Subscription activations by plan"))
	if err != nil {
		return nil, err
	}

	paymentFailures, err := meter.Int64Counter("payment_failures_total",
		metric.WithDescription("Payment gateway verification failures"))
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		TranslationsTotal:   translations,
		TranslationDuration: duration,
		LicenseDecisions:    decisions,
		UsersProvisioned:    provisioned,
		ActivationsTotal:    activations,
		PaymentFailures:     paymentFailures,
	}, nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var firstErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
