package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when any of the Maytapi identifiers is unset.
var ErrMissingCredentials = errors.New("missing environment variables: set PRODUCT_ID, PHONE_ID, and API_TOKEN")

// Config holds the application configuration loaded from .env and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	LogLevel string `mapstructure:"log_level"`

	ProductID string `mapstructure:"product_id"`
	PhoneID   string `mapstructure:"phone_id"`
	APIToken  string `mapstructure:"api_token"`

	APIRoot            string        `mapstructure:"api_root"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	ReceiptsFile string `mapstructure:"receipts_file"`
}

// String keeps the API token out of logs.
func (c Config) String() string {
	return fmt.Sprintf("{app_name:%s log_level:%s product_id:%s phone_id:%s api_root:%s http_timeout:%s receipts_file:%q}",
		c.AppName, c.LogLevel, c.ProductID, c.PhoneID, c.APIRoot, c.HTTPTimeout, c.ReceiptsFile)
}

// Redacted returns a loggable view of the config.
func (c Config) Redacted() map[string]any {
	return map[string]any{
		"app_name":      c.AppName,
		"log_level":     c.LogLevel,
		"product_id":    c.ProductID,
		"phone_id":      c.PhoneID,
		"api_token_set": c.APIToken != "",
		"api_root":      c.APIRoot,
		"http_timeout":  c.HTTPTimeout.String(),
		"receipts_file": c.ReceiptsFile,
	}
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	v.SetDefault("app_name", "maytapi-sender")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_root", "https://api.maytapi.com")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("receipts_file", "")

	for _, key := range []string{"product_id", "phone_id", "api_token"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ProductID == "" || cfg.PhoneID == "" || cfg.APIToken == "" {
		return nil, ErrMissingCredentials
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}
