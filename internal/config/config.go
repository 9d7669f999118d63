package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "expsim/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. LDS_SERIES_STRIDE.
const EnvPrefix = "LDS"

// Config represents the complete application configuration
type Config struct {
	Series    SeriesConfig    `yaml:"series" envconfig:"SERIES"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SeriesConfig holds the inputs every derived series quantity depends on
type SeriesConfig struct {
	StartTime           float64 `yaml:"start_time" envconfig:"START_TIME" default:"0" validate:"gte=0"`
	Stride              int     `yaml:"stride" envconfig:"STRIDE" default:"10" validate:"gte=1"`
	ResampleCount       int     `yaml:"resample_count" envconfig:"RESAMPLE_COUNT" default:"100" validate:"gte=2"`
	InterpolationPoints int     `yaml:"interpolation_points" envconfig:"INTERPOLATION_POINTS" default:"30" validate:"gte=2"`
	Delimiter           string  `yaml:"delimiter" envconfig:"DELIMITER" validate:"omitempty,oneof=semicolon comma tab"`
	DescendingEnd       string  `yaml:"descending_end" envconfig:"DESCENDING_END" default:"full" validate:"oneof=full post-peak"`
	Truncation          string  `yaml:"truncation" envconfig:"TRUNCATION" default:"strict" validate:"oneof=strict lenient"`
	ResampleMode        string  `yaml:"resample_mode" envconfig:"RESAMPLE_MODE" default:"proportional" validate:"oneof=proportional uniform"`
}

// PathsConfig locates the input file and the report output directory
type PathsConfig struct {
	File      string `yaml:"file" envconfig:"FILE"`
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DirName   string `yaml:"dir_name" envconfig:"DIR_NAME"`
	SubDir    string `yaml:"sub_dir" envconfig:"SUB_DIR" default:"load_deflection" validate:"required"`
	FileName  string `yaml:"file_name" envconfig:"FILE_NAME" default:"load_deflection.csv" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"out" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/ldseries.log"`
}

// ServerConfig contains HTTP server configuration for the serve command
type ServerConfig struct {
	Addr            string          `yaml:"addr" envconfig:"ADDR" default:":8080" validate:"required"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"20" validate:"gte=1"`
}

// TelemetryConfig controls OpenTelemetry tracing and metrics output
type TelemetryConfig struct {
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE" default:"metrics.prom"`
}

var validate = validator.New()

// Load loads configuration from environment variables and an optional YAML
// file. Environment variables take precedence over the file.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("load config from env", err)
	}

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		fileConfig, switches, err := loadFromFile(configFile)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("load config file %s", configFile), err)
		}
		mergeConfigs(*fileConfig, &cfg)
		mergeSwitches(switches, &cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fileSwitches mirrors the boolean settings so an explicit false in the file
// can be told apart from a missing key.
type fileSwitches struct {
	Server struct {
		RateLimit struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Telemetry struct {
		EnableTracing *bool `yaml:"enable_tracing"`
		EnableMetrics *bool `yaml:"enable_metrics"`
	} `yaml:"telemetry"`
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, *fileSwitches, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, nil, err
	}
	var switches fileSwitches
	if err := yaml.Unmarshal(data, &switches); err != nil {
		return nil, nil, err
	}

	return &cfg, &switches, nil
}

// mergeConfigs copies every non-zero non-boolean file value into cfg unless
// the matching environment variable is set.
func mergeConfigs(file Config, cfg *Config) {
	overlay(&cfg.Series.StartTime, file.Series.StartTime, "SERIES_START_TIME")
	overlay(&cfg.Series.Stride, file.Series.Stride, "SERIES_STRIDE")
	overlay(&cfg.Series.ResampleCount, file.Series.ResampleCount, "SERIES_RESAMPLE_COUNT")
	overlay(&cfg.Series.InterpolationPoints, file.Series.InterpolationPoints, "SERIES_INTERPOLATION_POINTS")
	overlay(&cfg.Series.Delimiter, file.Series.Delimiter, "SERIES_DELIMITER")
	overlay(&cfg.Series.DescendingEnd, file.Series.DescendingEnd, "SERIES_DESCENDING_END")
	overlay(&cfg.Series.Truncation, file.Series.Truncation, "SERIES_TRUNCATION")
	overlay(&cfg.Series.ResampleMode, file.Series.ResampleMode, "SERIES_RESAMPLE_MODE")

	overlay(&cfg.Paths.File, file.Paths.File, "PATHS_FILE")
	overlay(&cfg.Paths.BaseDir, file.Paths.BaseDir, "PATHS_BASE_DIR")
	overlay(&cfg.Paths.DirName, file.Paths.DirName, "PATHS_DIR_NAME")
	overlay(&cfg.Paths.SubDir, file.Paths.SubDir, "PATHS_SUB_DIR")
	overlay(&cfg.Paths.FileName, file.Paths.FileName, "PATHS_FILE_NAME")
	overlay(&cfg.Paths.OutputDir, file.Paths.OutputDir, "PATHS_OUTPUT_DIR")

	overlay(&cfg.Logging.Level, file.Logging.Level, "LOGGING_LEVEL")
	overlay(&cfg.Logging.Format, file.Logging.Format, "LOGGING_FORMAT")
	overlay(&cfg.Logging.Output, file.Logging.Output, "LOGGING_OUTPUT")
	overlay(&cfg.Logging.FilePath, file.Logging.FilePath, "LOGGING_FILE_PATH")

	overlay(&cfg.Server.Addr, file.Server.Addr, "SERVER_ADDR")
	overlay(&cfg.Server.ReadTimeout, file.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	overlay(&cfg.Server.WriteTimeout, file.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	overlay(&cfg.Server.ShutdownTimeout, file.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")
	overlay(&cfg.Server.RateLimit.RPS, file.Server.RateLimit.RPS, "SERVER_RATE_LIMIT_RPS")
	overlay(&cfg.Server.RateLimit.Burst, file.Server.RateLimit.Burst, "SERVER_RATE_LIMIT_BURST")

	overlay(&cfg.Telemetry.TraceFile, file.Telemetry.TraceFile, "TELEMETRY_TRACE_FILE")
	overlay(&cfg.Telemetry.MetricsFile, file.Telemetry.MetricsFile, "TELEMETRY_METRICS_FILE")
}

// mergeSwitches applies every boolean the file sets, false included, unless
// the matching environment variable is set.
func mergeSwitches(file *fileSwitches, cfg *Config) {
	overlayPresent(&cfg.Server.RateLimit.Enabled, file.Server.RateLimit.Enabled, "SERVER_RATE_LIMIT_ENABLED")
	overlayPresent(&cfg.Telemetry.EnableTracing, file.Telemetry.EnableTracing, "TELEMETRY_ENABLE_TRACING")
	overlayPresent(&cfg.Telemetry.EnableMetrics, file.Telemetry.EnableMetrics, "TELEMETRY_ENABLE_METRICS")
}

func overlayPresent[T any](dst *T, fileVal *T, envKey string) {
	if fileVal == nil {
		return
	}
	if _, ok := os.LookupEnv(EnvPrefix + "_" + envKey); ok {
		return
	}
	*dst = *fileVal
}

func overlay[T comparable](dst *T, fileVal T, envKey string) {
	var zero T
	if fileVal == zero {
		return
	}
	if _, ok := os.LookupEnv(EnvPrefix + "_" + envKey); ok {
		return
	}
	*dst = fileVal
}

// Validate checks every struct tag constraint
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewValidationError("config validation failed", err)
	}
	return nil
}

// getConfigFilePath returns the first config file found in common locations
func getConfigFilePath() string {
	locations := []string{
		"ldseries.yaml",
		"configs/ldseries.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Series: SeriesConfig{
			Stride:              10,
			ResampleCount:       100,
			InterpolationPoints: 30,
			DescendingEnd:       "full",
			Truncation:          "strict",
			ResampleMode:        "proportional",
		},
		Paths: PathsConfig{
			SubDir:    "load_deflection",
			FileName:  "load_deflection.csv",
			OutputDir: "out",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/ldseries.log",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: true,
			MetricsFile:   "metrics.prom",
		},
	}
}
