package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kpicli/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultExcelDir, cfg.Paths.ExcelDir)
	assert.Equal(t, DefaultRawDataDir, cfg.Paths.RawDataDir)
	assert.Equal(t, DefaultSiteDataDir, cfg.Paths.SiteDataDir)
	assert.Equal(t, DefaultWorkbook, cfg.Input.CurrentFile)
	assert.Empty(t, cfg.Input.PriorFile)
	assert.Equal(t, "NORMAL", cfg.Input.AcceptedOrderType)
	assert.Equal(t, PolicyMonthStart, cfg.Period.Policy)
	assert.Equal(t, CountModeRows, cfg.Metrics.CountMode)
	assert.True(t, cfg.Output.DailyCSV)
	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, DefaultSyncTimeout, cfg.Sync.Timeout)
	assert.NoError(t, cfg.validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "yaml overlays defaults",
			file: `
input:
  current_file: PEDIDOS_2026.xlsx
  prior_file: PEDIDOS_2025.xlsx
period:
  policy: first_order
sync:
  enabled: true
  timeout: 30s
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "PEDIDOS_2026.xlsx", cfg.Input.CurrentFile)
				assert.Equal(t, "PEDIDOS_2025.xlsx", cfg.Input.PriorFile)
				assert.Equal(t, PolicyFirstOrder, cfg.Period.Policy)
				assert.True(t, cfg.Sync.Enabled)
				assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)
				// untouched keys keep their defaults
				assert.Equal(t, "origin", cfg.Sync.Remote)
				assert.Equal(t, CountModeRows, cfg.Metrics.CountMode)
			},
		},
		{
			name: "environment overrides yaml",
			file: `
metrics:
  count_mode: rows
logging:
  level: warn
`,
			env: map[string]string{
				"KPI_METRICS_COUNT_MODE":     "distinct",
				"KPI_PATHS_SITE_DATA_DIR":    "public/dados",
				"KPI_INPUT_ORDER_ID_MIN":     "30000",
				"KPI_INPUT_ORDER_ID_MAX":     "50000",
				"KPI_OUTPUT_DAILY_CSV":       "false",
				"KPI_TELEMETRY_METRICS_FILE": "logs/kpi.prom",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, CountModeDistinct, cfg.Metrics.CountMode)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "public/dados", cfg.Paths.SiteDataDir)
				assert.Equal(t, int64(30000), cfg.Input.OrderIDMin)
				assert.Equal(t, int64(50000), cfg.Input.OrderIDMax)
				assert.False(t, cfg.Output.DailyCSV)
				assert.Equal(t, "logs/kpi.prom", cfg.Telemetry.MetricsFile)
			},
		},
		{
			name:    "unknown period policy",
			file:    "period:\n  policy: last_week\n",
			wantErr: true,
		},
		{
			name:    "unknown count mode from env",
			env:     map[string]string{"KPI_METRICS_COUNT_MODE": "orders"},
			wantErr: true,
		},
		{
			name: "inverted order id range",
			env: map[string]string{
				"KPI_INPUT_ORDER_ID_MIN": "50000",
				"KPI_INPUT_ORDER_ID_MAX": "30000",
			},
			wantErr: true,
		},
		{
			name:    "sync enabled without branch",
			file:    "sync:\n  enabled: true\n  branch: \"\"\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "paths: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := writeConfigFile(t, tt.file)
			cfg, err := LoadFrom(path)

			if tt.wantErr {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFrom_ConfigFileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "input:\n  accepted_order_type: EXPRESSO\n")
	t.Setenv("KPI_CONFIG_FILE", path)

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, "EXPRESSO", cfg.Input.AcceptedOrderType)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := LoadFrom(path)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
	assert.Equal(t, path, appErr.Context["file"])
	assert.ErrorIs(t, err, os.ErrNotExist)
}
