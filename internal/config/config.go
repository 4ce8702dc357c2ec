package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// SourcesConfig configures the registry data sources.
type SourcesConfig struct {
	// RegistryFile optionally points at a YAML file overriding per-source
	// base URLs, ranks and rate limits.
	RegistryFile string `yaml:"registry_file" mapstructure:"registry_file"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxResults   int    `yaml:"max_results" mapstructure:"max_results"`
}

// SchedulerConfig configures the background refresh loop.
type SchedulerConfig struct {
	Enabled       bool    `yaml:"enabled" mapstructure:"enabled"`
	IntervalHours int     `yaml:"interval_hours" mapstructure:"interval_hours"`
	WarmUpSecs    int     `yaml:"warm_up_secs" mapstructure:"warm_up_secs"`
	BatchSize     int     `yaml:"batch_size" mapstructure:"batch_size"`
	DelayMillis   int     `yaml:"delay_ms" mapstructure:"delay_ms"`
	MinTurnover   float64 `yaml:"min_turnover" mapstructure:"min_turnover"`
	MaxTurnover   float64 `yaml:"max_turnover" mapstructure:"max_turnover"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ExportConfig configures spreadsheet export.
type ExportConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
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
	v.SetEnvPrefix("FINPROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "finprospect.db")
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.max_results", 50)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval_hours", 6)
	v.SetDefault("scheduler.warm_up_secs", 60)
	v.SetDefault("scheduler.batch_size", 20)
	v.SetDefault("scheduler.delay_ms", 500)
	v.SetDefault("server.port", 8080)
	v.SetDefault("export.output", "companies.xlsx")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the fields required for the given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkStore := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required for the sqlite driver")
			}
		default:
			problems = append(problems, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case "enrich", "export", "seed", "migrate":
		checkStore()
	case "search":
		if c.Sources.MaxResults < 1 || c.Sources.MaxResults > 200 {
			problems = append(problems, "sources.max_results must be between 1 and 200")
		}
	case "serve":
		checkStore()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Scheduler.Enabled {
			if c.Scheduler.BatchSize < 1 || c.Scheduler.BatchSize > 500 {
				problems = append(problems, "scheduler.batch_size must be between 1 and 500")
			}
			if c.Scheduler.IntervalHours < 1 {
				problems = append(problems, "scheduler.interval_hours must be >= 1")
			}
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
