package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported annotation store dialects
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Store         StoreConfig         `mapstructure:"store"`
	Introspection IntrospectionConfig `mapstructure:"introspection"`
	Security      SecurityConfig      `mapstructure:"security"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	Host string `mapstructure:"host"`
}

// StoreConfig describes the internal database holding connections and annotations
type StoreConfig struct {
	Dialect        string `mapstructure:"dialect"`
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SSL            string `mapstructure:"ssl"`
	Path           string `mapstructure:"path"`
	IDFloor        int64  `mapstructure:"id_floor"`
	CreateDatabase bool   `mapstructure:"create_database"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
}

type IntrospectionConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type SecurityConfig struct {
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
	EnableRateLimit    bool   `mapstructure:"enable_rate_limit"`
	CredentialKey      string `mapstructure:"credential_key"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from path, or from ./configs and . when path is empty,
// then applies DATASCOUT_ environment overrides such as DATASCOUT_STORE_DIALECT.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("DATASCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the process cannot start with
func (c *Config) Validate() error {
	switch c.Store.Dialect {
	case DialectPostgres, DialectMySQL:
	case DialectSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unsupported store dialect %q", c.Store.Dialect)
	}

	if c.Store.IDFloor < 1 {
		return fmt.Errorf("store.id_floor must be at least 1, got %d", c.Store.IDFloor)
	}
	if c.Introspection.Timeout <= 0 {
		return fmt.Errorf("introspection.timeout must be positive, got %s", c.Introspection.Timeout)
	}
	if c.Security.CredentialKey != "" && len(c.Security.CredentialKey) < 32 {
		return errors.New("security.credential_key must hold 32 bytes")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.host", "0.0.0.0")

	// Store defaults
	v.SetDefault("store.dialect", DialectPostgres)
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", "5432")
	v.SetDefault("store.database", "DataScout")
	v.SetDefault("store.username", "postgres")
	v.SetDefault("store.password", "")
	v.SetDefault("store.ssl", "disable")
	v.SetDefault("store.path", "")
	v.SetDefault("store.id_floor", 1)
	v.SetDefault("store.create_database", true)
	v.SetDefault("store.max_open_conns", 10)

	// Introspection defaults
	v.SetDefault("introspection.timeout", "30s")

	// Security defaults
	v.SetDefault("security.rate_limit_per_minute", 60)
	v.SetDefault("security.rate_limit_burst", 10)
	v.SetDefault("security.enable_rate_limit", true)
	v.SetDefault("security.credential_key", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
