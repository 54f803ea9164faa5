// Package config loads settings from config.yaml and SCHOOLS_* environment
// variables.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roadsafety/schools-cli/internal/accident"
	"github.com/roadsafety/schools-cli/internal/injury"
)

// DateLayout is the day-first date format used for report windows.
const DateLayout = "02-01-2006"

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the destination store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SourceConfig configures where schools and involvement records are read.
type SourceConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "csv"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	RecordsPath string `yaml:"records_path" mapstructure:"records_path"`
	// SchoolsPath is a CSV export, or a point shapefile (.shp or .zip).
	SchoolsPath     string      `yaml:"schools_path" mapstructure:"schools_path"`
	SchoolsEncoding string      `yaml:"schools_encoding" mapstructure:"schools_encoding"`
	Workers         int         `yaml:"workers" mapstructure:"workers"`
	RatePerSec      float64     `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Retry           RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures retries of record-source reads.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// ReportConfig holds the run parameters.
type ReportConfig struct {
	StartDate           string  `yaml:"start_date" mapstructure:"start_date"`
	EndDate             string  `yaml:"end_date" mapstructure:"end_date"`
	DistanceKM          float64 `yaml:"distance_km" mapstructure:"distance_km"`
	BatchSize           int     `yaml:"batch_size" mapstructure:"batch_size"`
	Preset              string  `yaml:"preset" mapstructure:"preset"`
	PresetsPath         string  `yaml:"presets_path" mapstructure:"presets_path"`
	IncludeEmptySchools bool    `yaml:"include_empty_schools" mapstructure:"include_empty_schools"`
	SchoolIDs           []int64 `yaml:"school_ids" mapstructure:"school_ids"`
	UIBaseURL           string  `yaml:"ui_base_url" mapstructure:"ui_base_url"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Format   string `yaml:"format" mapstructure:"format"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCHOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("source.driver", "postgres")
	v.SetDefault("source.workers", 4)
	v.SetDefault("source.schools_encoding", "cp1255")
	v.SetDefault("source.rate_per_sec", 0)
	v.SetDefault("source.retry.max_attempts", 3)
	v.SetDefault("source.retry.initial_backoff_ms", 250)
	v.SetDefault("source.retry.max_backoff_ms", 10000)
	v.SetDefault("report.distance_km", 0.5)
	v.SetDefault("report.batch_size", 5000)
	v.SetDefault("report.preset", accident.PresetAllSeverities)
	v.SetDefault("report.include_empty_schools", true)
	v.SetDefault("report.ui_base_url", injury.DefaultUIBaseURL)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.encoding", "cp1255")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// SourceDatabaseURL returns the record-source database, falling back to the
// store database when unset.
func (c *Config) SourceDatabaseURL() string {
	if c.Source.DatabaseURL != "" {
		return c.Source.DatabaseURL
	}
	return c.Store.DatabaseURL
}

// Validate checks the settings needed by a command.
func (c *Config) Validate(mode string) error {
	var errs []string

	needSource := func() {
		switch c.Source.Driver {
		case "postgres":
			if c.SourceDatabaseURL() == "" {
				errs = append(errs, "source.database_url (or store.database_url) is required")
			}
		case "csv":
			if c.Source.RecordsPath == "" {
				errs = append(errs, "source.records_path is required")
			}
			if c.Source.SchoolsPath == "" {
				errs = append(errs, "source.schools_path is required")
			}
		default:
			errs = append(errs, "source.driver must be postgres or csv")
		}
		if c.Source.Workers < 1 || c.Source.Workers > 64 {
			errs = append(errs, "source.workers must be between 1 and 64")
		}
		if c.Report.StartDate == "" {
			errs = append(errs, "report.start_date is required")
		}
		if c.Report.EndDate == "" {
			errs = append(errs, "report.end_date is required")
		}
	}
	needStore := func() {
		switch c.Store.Driver {
		case "postgres", "sqlite":
		default:
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}

	switch mode {
	case "import":
		needSource()
		needStore()
	case "export":
		needSource()
	case "serve":
		needStore()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "migrate":
		needStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Params converts the report settings into validated run parameters.
func (r ReportConfig) Params() (injury.Params, error) {
	start, err := parseDate("report.start_date", r.StartDate)
	if err != nil {
		return injury.Params{}, err
	}
	end, err := parseDate("report.end_date", r.EndDate)
	if err != nil {
		return injury.Params{}, err
	}
	if r.BatchSize <= 0 {
		return injury.Params{}, eris.Wrapf(injury.ErrInvalidParameter, "report.batch_size must be positive, got %d", r.BatchSize)
	}

	presets, err := accident.LoadPresets(r.PresetsPath)
	if err != nil {
		return injury.Params{}, eris.Wrapf(injury.ErrInvalidParameter, "%v", err)
	}
	pred, err := accident.LookupPreset(presets, r.Preset)
	if err != nil {
		return injury.Params{}, eris.Wrapf(injury.ErrInvalidParameter, "%v", err)
	}

	p := injury.Params{
		RadiusKM:            r.DistanceKM,
		Window:              accident.Window{Start: start, End: end},
		Predicate:           pred,
		SchoolIDs:           r.SchoolIDs,
		IncludeEmptySchools: r.IncludeEmptySchools,
	}
	if err := p.Validate(); err != nil {
		return injury.Params{}, err
	}
	return p, nil
}

func parseDate(key, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, eris.Wrapf(injury.ErrInvalidParameter, "%s %q is not a DD-MM-YYYY date", key, s)
	}
	return t, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
