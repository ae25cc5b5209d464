// Package config loads goshort settings from defaults, an optional config
// file, and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/undeadops/goshort/internal/omnibox"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

const EnvPrefix = "GOSHORT"

type Config struct {
	Addr      string         `mapstructure:"addr"`
	BaseURL   string         `mapstructure:"base_url"`
	SearchURL string         `mapstructure:"search_url"`
	Debug     bool           `mapstructure:"debug"`
	LogLevel  string         `mapstructure:"log_level"`
	Store     StoreConfig    `mapstructure:"store"`
	DynamoDB  DynamoDBConfig `mapstructure:"dynamodb"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// Path is the JSON file or SQLite database location.
	Path string `mapstructure:"path"`
}

type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Table    string `mapstructure:"table"`
	Endpoint string `mapstructure:"endpoint"`
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "goshort")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "goshort")
	}
	return "."
}

// defaultAddr honours PORT so the server still runs where only PORT is set.
func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":5000"
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", defaultAddr())
	v.SetDefault("base_url", "")
	v.SetDefault("search_url", omnibox.DefaultSearchURL)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", filepath.Join(defaultDataDir(), "shortcuts.json"))
	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.table", "goshort")
	v.SetDefault("dynamodb.endpoint", "")
}

// bindEnv maps GOSHORT_* variables plus the plain names the service has
// always honoured.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string][]string{
		"addr":              {"GOSHORT_ADDR", "ADDR"},
		"debug":             {"GOSHORT_DEBUG", "DEBUG"},
		"dynamodb.region":   {"GOSHORT_DYNAMODB_REGION", "AWS_REGION"},
		"dynamodb.table":    {"GOSHORT_DYNAMODB_TABLE", "DYNAMODB_TABLE"},
		"dynamodb.endpoint": {"GOSHORT_DYNAMODB_ENDPOINT", "DYNAMODB_ENDPOINT"},
	}
	for key, names := range legacy {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load builds a Config from v after applying defaults, the environment and,
// when cfgFile is set, that file.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// Validate reports every problem in cfg at once.
func (cfg Config) Validate() (retErr error) {
	if cfg.Addr == "" {
		retErr = multierror.Append(retErr, errors.New("missing server address"))
	}
	if _, err := url.ParseRequestURI(cfg.SearchURL); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("invalid search url: %w", err))
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		retErr = multierror.Append(retErr, fmt.Errorf("invalid log level %q", cfg.LogLevel))
	}

	switch cfg.Store.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if cfg.Store.Path == "" {
			retErr = multierror.Append(retErr, fmt.Errorf("store backend %s needs a path", cfg.Store.Backend))
		}
	case BackendDynamoDB:
		if cfg.DynamoDB.Table == "" {
			retErr = multierror.Append(retErr, errors.New("missing DynamoDB table name"))
		}
		if cfg.DynamoDB.Region == "" {
			retErr = multierror.Append(retErr, errors.New("missing AWS region"))
		}
	default:
		retErr = multierror.Append(retErr, fmt.Errorf("invalid storage backend %q", cfg.Store.Backend))
	}

	return
}

func (cfg Config) String() string {
	var b strings.Builder
	b.WriteString("addr='" + cfg.Addr + "'")
	b.WriteString(" baseURL='" + cfg.BaseURL + "'")
	b.WriteString(" searchURL='" + cfg.SearchURL + "'")
	b.WriteString(" backend='" + cfg.Store.Backend + "'")
	switch cfg.Store.Backend {
	case BackendFile, BackendSQLite:
		b.WriteString(" path='" + cfg.Store.Path + "'")
	case BackendDynamoDB:
		b.WriteString(" table='" + cfg.DynamoDB.Table + "' region='" + cfg.DynamoDB.Region + "'")
		if cfg.DynamoDB.Endpoint != "" {
			b.WriteString(" endpoint='" + cfg.DynamoDB.Endpoint + "'")
		}
	}
	return b.String()
}
