package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Model   ModelConfig   `yaml:"model" mapstructure:"model"`
	Cluster ClusterConfig `yaml:"cluster" mapstructure:"cluster"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DatasetConfig locates the crime records file.
type DatasetConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Sheet string `yaml:"sheet" mapstructure:"sheet"` // XLSX only
}

// ModelConfig configures where the fitted cluster model is persisted.
type ModelConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Name        string `yaml:"name" mapstructure:"name"`
}

// ClusterConfig tunes the k-means fit.
type ClusterConfig struct {
	K       int   `yaml:"k" mapstructure:"k"`
	Seed    int64 `yaml:"seed" mapstructure:"seed"`
	NInit   int   `yaml:"n_init" mapstructure:"n_init"`
	MaxIter int   `yaml:"max_iter" mapstructure:"max_iter"`
}

// ServerConfig configures the query server.
type ServerConfig struct {
	Host        string   `yaml:"host" mapstructure:"host"`
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec, 0 = off
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.path", "crime_dataset.csv")
	v.SetDefault("dataset.sheet", "")
	v.SetDefault("model.driver", "file")
	v.SetDefault("model.path", "") // per driver, see applyDriverDefaults
	v.SetDefault("model.database_url", "")
	v.SetDefault("model.name", "risk")
	v.SetDefault("cluster.k", 3)
	v.SetDefault("cluster.seed", 42)
	v.SetDefault("cluster.n_init", 10)
	v.SetDefault("cluster.max_iter", 300)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
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

	cfg.applyDriverDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default model locations per driver.
const (
	DefaultModelFile  = "kmeans_model.json"
	DefaultSQLiteFile = "area-risk.db"
)

// applyDriverDefaults fills model.path when unset: a JSON file for the file
// driver and a database file for sqlite.
func (c *Config) applyDriverDefaults() {
	if c.Model.Path != "" {
		return
	}
	switch c.Model.Driver {
	case "file":
		c.Model.Path = DefaultModelFile
	case "sqlite":
		c.Model.Path = DefaultSQLiteFile
	}
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	var problems []string

	if c.Dataset.Path == "" {
		problems = append(problems, "dataset.path is required")
	}
	if c.Cluster.K != 3 {
		problems = append(problems, "cluster.k must be 3")
	}
	switch c.Model.Driver {
	case "file":
		if c.Model.Path == "" {
			problems = append(problems, "model.path is required for the file driver")
		}
	case "sqlite":
	case "postgres":
		if c.Model.DatabaseURL == "" {
			problems = append(problems, "model.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "model.driver must be one of file, sqlite, postgres")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit must not be negative")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
