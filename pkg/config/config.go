package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Required fields
	JWTSecretKey string `mapstructure:"jwt_secret_key"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`

	// Optional JWT settings
	JWTAlgorithm string        `mapstructure:"jwt_algorithm"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`

	// Storage
	DBPath string `mapstructure:"db_path"`

	// Listing
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`

	// Rate limiting, per user or client IP
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int `mapstructure:"rate_limit_burst"`

	MetricsEnabled bool `mapstructure:"metrics_enabled"`

	// Static paths
	ConfigPath string
}

const (
	EnvPrefix                 = "EVENTLY"
	DefaultConfigPath         = "/etc/evently/config.yml"
	DefaultDBPath             = "/var/lib/evently/evently.sqlite3"
	DefaultAPIHost            = "0.0.0.0"
	DefaultAPIPort            = 5000
	DefaultLogLevel           = "info"
	DefaultJWTAlgorithm       = "HS256"
	DefaultTokenTTL           = 24 * time.Hour
	DefaultPageSize           = 10
	DefaultMaxPageSize        = 100
	DefaultRateLimitPerMinute = 120
	DefaultRateLimitBurst     = 60
)

var defaults = map[string]interface{}{
	"api_host":              DefaultAPIHost,
	"api_port":              DefaultAPIPort,
	"log_level":             DefaultLogLevel,
	"jwt_algorithm":         DefaultJWTAlgorithm,
	"token_ttl":             DefaultTokenTTL,
	"db_path":               DefaultDBPath,
	"default_page_size":     DefaultPageSize,
	"max_page_size":         DefaultMaxPageSize,
	"rate_limit_per_minute": DefaultRateLimitPerMinute,
	"rate_limit_burst":      DefaultRateLimitBurst,
	"metrics_enabled":       true,
}

// Keys without a default still need binding so EVENTLY_* variables are seen
// by Unmarshal.
var envOnlyKeys = []string{"jwt_secret_key", "ssl_cert", "ssl_key", "cors_origins", "log_file"}

// Load reads the YAML config file and applies EVENTLY_* environment
// overrides. A missing file is an error only when a path was given
// explicitly; otherwise the environment alone may configure the service.
func Load(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if _, err := os.Stat(configPath); explicit || !errors.Is(err, os.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt_algorithm must be one of HS256, HS384, HS512")
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}

	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535")
	}

	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if c.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be at least 1")
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("max_page_size must not be smaller than default_page_size")
	}

	if c.RateLimitPerMinute < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

// RateLimitEnabled reports whether requests are rate limited at all
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitPerMinute > 0
}

func (c *Config) IsDevMode() bool {
	return os.Getenv(EnvPrefix+"_DEV_MODE") == "1"
}
