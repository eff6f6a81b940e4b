// Package config loads and validates the settings for one geocoding run.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidConfig marks fatal configuration failures detected before a run
// starts. Everything Load rejects wraps this sentinel.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the settings for one processing run. It is built once by Load
// and read-only thereafter. Column bounds against the actual table width are
// checked lazily per row at processing time, not here.
type Config struct {
	APIKey       string    `mapstructure:"api_key"`
	InputPath    string    `mapstructure:"input_path"`
	OutputPath   string    `mapstructure:"output_path"`
	Column       int       `mapstructure:"column"`
	RequestDelay float64   `mapstructure:"request_delay"` // seconds
	ChunkSize    int       `mapstructure:"chunk_size"`
	Log          LogConfig `mapstructure:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Delay returns the request delay as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.RequestDelay * float64(time.Second))
}

// Overrides carries explicit values (CLI flags) that win over config-file
// values on conflict. Pointer fields distinguish "not given" from zero.
type Overrides struct {
	APIKey       string
	InputPath    string
	OutputPath   string
	Column       *int
	RequestDelay *float64
	ChunkSize    *int
}

// Load merges the config file at path with the given overrides, overrides
// winning, and validates the result. An empty path falls back to ./config.json
// and is not an error when absent; an explicit path that is unreadable or not
// valid JSON is.
func Load(path string, o Overrides) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GEOSPYDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("request_delay", 0.5)
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("output_path", "geocoding_result.xlsx")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, eris.Wrapf(ErrInvalidConfig, "config: read %s: %v", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrapf(ErrInvalidConfig, "config: read file: %v", err)
		}
	}

	if o.APIKey != "" {
		v.Set("api_key", o.APIKey)
	}
	if o.InputPath != "" {
		v.Set("input_path", o.InputPath)
	}
	if o.OutputPath != "" {
		v.Set("output_path", o.OutputPath)
	}
	if o.Column != nil {
		v.Set("column", *o.Column)
	}
	if o.RequestDelay != nil {
		v.Set("request_delay", *o.RequestDelay)
	}
	if o.ChunkSize != nil {
		v.Set("chunk_size", *o.ChunkSize)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrapf(ErrInvalidConfig, "config: unmarshal: %v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return eris.Wrap(ErrInvalidConfig, "config: api_key is required")
	}
	if c.InputPath == "" {
		return eris.Wrap(ErrInvalidConfig, "config: input_path is required")
	}
	if c.Column < 0 {
		return eris.Wrapf(ErrInvalidConfig, "config: column must be >= 0, got %d", c.Column)
	}
	if c.RequestDelay < 0 {
		return eris.Wrapf(ErrInvalidConfig, "config: request_delay must be >= 0, got %g", c.RequestDelay)
	}
	if c.ChunkSize <= 0 {
		return eris.Wrapf(ErrInvalidConfig, "config: chunk_size must be > 0, got %d", c.ChunkSize)
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
