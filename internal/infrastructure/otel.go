package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"kpicli/internal/config"
)

const (
	ServiceName = "painel-kpi"
	MeterName   = "kpicli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	SampleRatio    float64
	TraceWriter    io.Writer // stdout exporter destination, os.Stderr when nil
}

// OTelProviders holds the OpenTelemetry providers.
// Tracer and Meter are never nil; disabled exporters yield no-op implementations.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: config.AppVersion,
		Environment:    env,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	}
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	c := DefaultOTelConfig()
	if cfg.TraceExporter != "" {
		c.TraceExporter = cfg.TraceExporter
	}
	if cfg.MetricExporter != "" {
		c.MetricExporter = cfg.MetricExporter
	}
	return c
}

// InitializeOTel initializes tracing and metrics for one run
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.DebugContext(ctx, "OpenTelemetry initialization complete",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stderr
		}
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}

		// A CLI run is short; export each span as it ends
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)

		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)

		providers.Logger.DebugContext(ctx, "Tracing initialized",
			slog.String("exporter", cfg.TraceExporter),
			slog.Float64("sample_ratio", cfg.SampleRatio))
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics on a private Prometheus registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		registry := prometheus.NewRegistry()

		exporter, err := otelprom.New(
			otelprom.WithRegisterer(registry),
			otelprom.WithoutTargetInfo(),
		)
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.Registry = registry
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetMeterProvider(mp)

		providers.Logger.DebugContext(ctx, "Metrics initialized",
			slog.String("exporter", cfg.MetricExporter))
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	return nil
}

// WriteMetricsTextfile writes the registry in the node-exporter textfile
// collector format. It is a no-op when metrics are disabled or path is empty.
func (p *OTelProviders) WriteMetricsTextfile(path string) error {
	if p == nil || p.Registry == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown errors: %w", err)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// BusinessMetrics holds the run's instruments
type BusinessMetrics struct {
	RowsRead     metric.Int64Counter
	RowsDropped  metric.Int64Counter
	SinkWrites   metric.Int64Counter
	PushAttempts metric.Int64Counter
	KPIValue     metric.Float64Gauge
	RunDuration  metric.Float64Histogram
}

// CreateBusinessMetrics creates the KPI run instruments
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"kpi_rows_read",
		metric.WithDescription("Spreadsheet rows read, by source workbook"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"kpi_rows_dropped",
		metric.WithDescription("Spreadsheet rows discarded, by reason"),
	)
	if err != nil {
		return nil, err
	}

	sinkWrites, err := meter.Int64Counter(
		"kpi_sink_writes",
		metric.WithDescription("Document writes per sink directory, by status"),
	)
	if err != nil {
		return nil, err
	}

	pushAttempts, err := meter.Int64Counter(
		"kpi_push_attempts",
		metric.WithDescription("Git push attempts, by status"),
	)
	if err != nil {
		return nil, err
	}

	kpiValue, err := meter.Float64Gauge(
		"kpi_value",
		metric.WithDescription("Last computed KPI value, by metric and period"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"kpi_run_duration",
		metric.WithDescription("Full run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		RowsRead:     rowsRead,
		RowsDropped:  rowsDropped,
		SinkWrites:   sinkWrites,
		PushAttempts: pushAttempts,
		KPIValue:     kpiValue,
		RunDuration:  runDuration,
	}, nil
}

// RecordRows records rows read from a source and the rows dropped per reason
func (m *BusinessMetrics) RecordRows(ctx context.Context, source string, read int, dropped map[string]int) {
	if m == nil {
		return
	}
	m.RowsRead.Add(ctx, int64(read), metric.WithAttributes(attribute.String("source", source)))
	for reason, n := range dropped {
		m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("reason", reason),
		))
	}
}

// RecordSinkWrite records one document write to a sink
func (m *BusinessMetrics) RecordSinkWrite(ctx context.Context, sink string, err error) {
	if m == nil {
		return
	}
	m.SinkWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sink", sink),
		statusAttr(err),
	))
}

// RecordPush records a push attempt
func (m *BusinessMetrics) RecordPush(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.PushAttempts.Add(ctx, 1, metric.WithAttributes(statusAttr(err)))
}

// RecordKPI records a KPI value for a period ("current" or "prior")
func (m *BusinessMetrics) RecordKPI(ctx context.Context, name, period string, value float64) {
	if m == nil {
		return
	}
	m.KPIValue.Record(ctx, value, metric.WithAttributes(
		attribute.String("metric", name),
		attribute.String("period", period),
	))
}

// RecordRun records the total run duration
func (m *BusinessMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(statusAttr(err)))
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
