package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" default:"8082" validate:"required,numeric"`
		Mode string `yaml:"mode" default:"release" validate:"oneof=debug release test"`
	} `yaml:"server"`
	DataDir   string `yaml:"data_dir" default:"./data" validate:"required"`
	DevMode   bool   `yaml:"dev_mode"`
	RateLimit struct {
		Rate  float64 `yaml:"rate" default:"2" validate:"gt=0"`
		Burst float64 `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"rate_limit"`
	Cache struct {
		TTL             time.Duration `yaml:"ttl" default:"30m" validate:"gt=0"`
		MaxEntries      int           `yaml:"max_entries" default:"1000" validate:"gte=1"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"5m" validate:"gt=0"`
	} `yaml:"cache"`
	Stats struct {
		RetainMonths int `yaml:"retain_months" default:"12" validate:"gte=1"`
	} `yaml:"stats"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
}

// LoadEnv loads .env.development, falling back to .env. Missing files are not an error.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		_ = godotenv.Load()
	}
}

// Load reads the optional YAML file at path, applies defaults and
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case os.IsNotExist(err):
			// config file is optional
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse DEV_MODE: %w", err)
		}
		c.DevMode = dev
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
