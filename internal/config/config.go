package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "kpicli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Period    PeriodConfig    `yaml:"period" envconfig:"PERIOD"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Sync      SyncConfig      `yaml:"sync" envconfig:"SYNC"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PathsConfig contains file system paths configuration.
// Relative directories are resolved against BaseDir.
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	ExcelDir    string `yaml:"excel_dir" envconfig:"EXCEL_DIR" validate:"required"`
	RawDataDir  string `yaml:"raw_data_dir" envconfig:"RAW_DATA_DIR" validate:"required"`
	SiteDataDir string `yaml:"site_data_dir" envconfig:"SITE_DATA_DIR" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	RepoDir     string `yaml:"repo_dir" envconfig:"REPO_DIR"`
}

// InputConfig describes which workbooks to read and how rows are filtered
type InputConfig struct {
	CurrentFile       string `yaml:"current_file" envconfig:"CURRENT_FILE"`
	PriorFile         string `yaml:"prior_file" envconfig:"PRIOR_FILE"`
	Sheet             string `yaml:"sheet" envconfig:"SHEET"`
	AcceptedOrderType string `yaml:"accepted_order_type" envconfig:"ACCEPTED_ORDER_TYPE" validate:"required"`
	OrderIDMin        int64  `yaml:"order_id_min" envconfig:"ORDER_ID_MIN" validate:"gte=0"`
	OrderIDMax        int64  `yaml:"order_id_max" envconfig:"ORDER_ID_MAX" validate:"gte=0"`
}

// PeriodConfig selects the default current-period rule
type PeriodConfig struct {
	Policy string `yaml:"policy" envconfig:"POLICY" validate:"oneof=month_start first_order"`
}

// MetricsConfig controls how orders are counted
type MetricsConfig struct {
	CountMode string `yaml:"count_mode" envconfig:"COUNT_MODE" validate:"oneof=rows distinct"`
}

// OutputConfig contains optional outputs besides the dashboard documents
type OutputConfig struct {
	DailyCSV bool `yaml:"daily_csv" envconfig:"DAILY_CSV"`
	Progress bool `yaml:"progress" envconfig:"PROGRESS"`
}

// SyncConfig configures the git push of the site data directory
type SyncConfig struct {
	Enabled       bool          `yaml:"enabled" envconfig:"ENABLED"`
	GitBinary     string        `yaml:"git_binary" envconfig:"GIT_BINARY" validate:"required_if=Enabled true"`
	Remote        string        `yaml:"remote" envconfig:"REMOTE" validate:"required_if=Enabled true"`
	Branch        string        `yaml:"branch" envconfig:"BRANCH" validate:"required_if=Enabled true"`
	CommitMessage string        `yaml:"commit_message" envconfig:"COMMIT_MESSAGE" validate:"required_if=Enabled true"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig contains tracing and metrics exporter settings
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=none prometheus"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence (env wins).
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path falls
// back to KPI_CONFIG_FILE and then to the well-known locations.
func LoadFrom(configFile string) (*Config, error) {
	// .env only fills variables that are not already set
	if _, err := os.Stat(DotEnvFile); err == nil {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, apperrors.NewConfigError("failed to load "+DotEnvFile, err)
		}
	}

	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("file", configFile)
		}
	}

	// Load from environment variables last so they override the file
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Input.OrderIDMax > 0 && c.Input.OrderIDMax < c.Input.OrderIDMin {
		return fmt.Errorf("order id range is inverted: min %d > max %d", c.Input.OrderIDMin, c.Input.OrderIDMax)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		ConfigFileName,
		filepath.Join("config", ConfigFileName),
	}
	if exeDir, err := executableDir(); err == nil {
		locations = append(locations, filepath.Join(exeDir, ConfigFileName))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ExcelDir:    DefaultExcelDir,
			RawDataDir:  DefaultRawDataDir,
			SiteDataDir: DefaultSiteDataDir,
			LogsDir:     DefaultLogsDir,
		},
		Input: InputConfig{
			CurrentFile:       DefaultWorkbook,
			AcceptedOrderType: DefaultOrderType,
		},
		Period: PeriodConfig{
			Policy: PolicyMonthStart,
		},
		Metrics: MetricsConfig{
			CountMode: CountModeRows,
		},
		Output: OutputConfig{
			DailyCSV: true,
			Progress: false,
		},
		Sync: SyncConfig{
			Enabled:       false,
			GitBinary:     "git",
			Remote:        "origin",
			Branch:        "main",
			CommitMessage: DefaultCommitMessage,
			Timeout:       DefaultSyncTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "both",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
		},
	}
}
