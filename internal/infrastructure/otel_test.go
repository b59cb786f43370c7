package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpicli/internal/config"
	"kpicli/internal/shared/testutil"
)

func TestOTelInitialization(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	// Default config: no tracing exporter, prometheus metrics
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr bool
	}{
		{
			name: "stdout tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				SampleRatio:    1.0,
				TraceWriter:    &bytes.Buffer{},
			},
		},
		{
			name: "everything disabled",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				TraceExporter:  "none",
				MetricExporter: "none",
			},
		},
		{
			name:    "unknown trace exporter",
			config:  &OTelConfig{TraceExporter: "otlp", MetricExporter: "none"},
			wantErr: true,
		},
		{
			name:    "unknown metric exporter",
			config:  &OTelConfig{TraceExporter: "none", MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestStdoutTracingExportsSpans(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	var out bytes.Buffer

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1.0,
		TraceWriter:    &out,
	}, logger)
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "report.load")
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, out.String(), "report.load")
	assert.Contains(t, out.String(), "boom")
}

func TestBusinessMetricsTextfile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRows(ctx, "PEDIDOS ONDA.xlsx", 5, map[string]int{"order_type": 1})
	metrics.RecordSinkWrite(ctx, "dados", nil)
	metrics.RecordSinkWrite(ctx, "site/dados", errors.New("read-only"))
	metrics.RecordPush(ctx, nil)
	metrics.RecordKPI(ctx, "faturamento", "current", 1234.5)
	metrics.RecordRun(ctx, 150*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "kpi.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "kpi_rows_read_total")
	assert.Contains(t, text, "kpi_rows_dropped_total")
	assert.Contains(t, text, `reason="order_type"`)
	assert.Contains(t, text, `status="failure"`)
	assert.Contains(t, text, "kpi_push_attempts_total")
	assert.Contains(t, text, "kpi_value")
	assert.Contains(t, text, `metric="faturamento"`)
	assert.Contains(t, text, "kpi_run_duration_seconds")
}

func TestWriteMetricsTextfileDisabled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "none"}, logger)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kpi.prom")
	assert.NoError(t, providers.WriteMetricsTextfile(path))
	assert.NoFileExists(t, path)

	// nil metrics are tolerated
	var metrics *BusinessMetrics
	metrics.RecordPush(context.Background(), nil)
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{TraceExporter: "stdout", MetricExporter: "none"})
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "none", cfg.MetricExporter)
	assert.Equal(t, config.AppVersion, cfg.ServiceVersion)
}
