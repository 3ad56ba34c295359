package client

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the per-deployment client configuration. The API origin differs
// between deployments and is never baked into the binary.
type Config struct {
	APIBaseURL          string `yaml:"api_base_url"`
	CustomerPollSeconds int    `yaml:"customer_poll_seconds"`
	AdminPollSeconds    int    `yaml:"admin_poll_seconds"`
}

// DefaultConfig matches a local development deployment.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:          "http://localhost:8080",
		CustomerPollSeconds: 5,
		AdminPollSeconds:    8,
	}
}

// LoadConfig reads a yaml config file, filling gaps with defaults. A missing
// file yields the defaults; a malformed file is an error. The QUICKSHOP_API_URL
// environment variable overrides the configured origin either way.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, err
		}
		if cfg.APIBaseURL == "" {
			cfg.APIBaseURL = DefaultConfig().APIBaseURL
		}
		if cfg.CustomerPollSeconds <= 0 {
			cfg.CustomerPollSeconds = DefaultConfig().CustomerPollSeconds
		}
		if cfg.AdminPollSeconds <= 0 {
			cfg.AdminPollSeconds = DefaultConfig().AdminPollSeconds
		}
	}

	if env := os.Getenv("QUICKSHOP_API_URL"); env != "" {
		cfg.APIBaseURL = env
	}
	return cfg, nil
}

// CustomerPollInterval is the tracking view's refresh period.
func (c Config) CustomerPollInterval() time.Duration {
	return time.Duration(c.CustomerPollSeconds) * time.Second
}

// AdminPollInterval is the fulfillment console's refresh period.
func (c Config) AdminPollInterval() time.Duration {
	return time.Duration(c.AdminPollSeconds) * time.Second
}
