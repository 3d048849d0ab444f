package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. DATACO_LOGGING_LEVEL.
const EnvPrefix = "DATACO"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Features  FeaturesConfig  `yaml:"features" envconfig:"FEATURES"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR" validate:"required"`
	InputFile string `yaml:"input_file" envconfig:"INPUT_FILE"`
}

// PipelineConfig controls how the raw dataset is read
type PipelineConfig struct {
	Encoding  string `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=latin-1 latin1 iso-8859-1 windows-1252 cp1252 utf-8 utf8"`
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
}

// FeaturesConfig selects the model inputs prepared after cleaning
type FeaturesConfig struct {
	CategoricalColumns []string `yaml:"categorical_columns" envconfig:"CATEGORICAL_COLUMNS"`
	FeatureColumns     []string `yaml:"feature_columns" envconfig:"FEATURE_COLUMNS" validate:"min=1"`
	TargetColumn       string   `yaml:"target_column" envconfig:"TARGET_COLUMN" validate:"required"`
	Scale              bool     `yaml:"scale" envconfig:"SCALE"`
}

// ChartsConfig contains chart rendering settings
type ChartsConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	DPI         int    `yaml:"dpi" envconfig:"DPI" validate:"min=50,max=600"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=png jpg jpeg tif tiff svg pdf eps"`
	Concurrency int    `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=16"`
}

// TelemetryConfig contains tracing and metrics settings
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then the YAML file (if any), then
// DATACO_* environment variables. An empty configFile searches the usual locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// No default tags on the structs, so only variables that are set override.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file on cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate normalizes case-insensitive values and checks struct constraints
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Pipeline.Encoding = strings.ToLower(c.Pipeline.Encoding)
	c.Charts.Format = strings.ToLower(c.Charts.Format)

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}

	for _, col := range c.Features.FeatureColumns {
		if col == c.Features.TargetColumn {
			return fmt.Errorf("target column %q is also listed as a feature", col)
		}
	}

	return nil
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"dataco.yaml",
		"configs/dataco.yaml",
		"../configs/dataco.yaml",
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
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/dataco.log",
		},
		Paths: PathsConfig{
			BaseDir: ".",
		},
		Pipeline: PipelineConfig{
			Encoding:  "latin-1",
			Delimiter: ",",
		},
		Features: FeaturesConfig{
			CategoricalColumns: []string{
				"shipping_mode",
				"market",
				"category_name",
				"customer_segment",
				"order_region",
			},
			FeatureColumns: []string{
				"shipping_mode",
				"market",
				"category_name",
				"days_for_shipment_scheduled",
				"order_item_quantity",
				"order_item_discount",
				"sales",
				"is_high_discount",
				"is_bulk_order",
				"is_weekend_order",
			},
			TargetColumn: "late_delivery_risk",
			Scale:        true,
		},
		Charts: ChartsConfig{
			Enabled:     true,
			DPI:         DefaultChartDPI,
			Format:      "png",
			Concurrency: 4,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
