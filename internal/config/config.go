// Package config loads and validates the pipeline configuration from
// environment variables and an optional YAML file. Environment variables use
// the TSE prefix and win over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"tsecli/internal/errors"
)

// DefaultConfigFile is the config file looked up in the working directory
// when TSE_CONFIG_FILE is not set.
const DefaultConfigFile = "tsecli.yaml"

// Config is the complete application configuration shared by the three
// stage commands.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Fetch   FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// FetchConfig contains the market-watch download settings.
type FetchConfig struct {
	// BaseURL is the TSETMC host serving the market-watch spreadsheets.
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	// Timeout bounds each individual request.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	// RequestsPerSecond throttles the sequential download loop so a long
	// backfill stays polite to the upstream portal.
	RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
}

// Default returns the built-in configuration, the base layer under the file
// and environment overrides.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "Logs/tsecli.log",
		},
		Paths: DefaultPaths(),
		Fetch: FetchConfig{
			BaseURL:           "http://members.tsetmc.com",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 2,
		},
	}
}

// Load builds the configuration: built-in defaults, then the YAML file if
// present, then TSE_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	configFile := os.Getenv("TSE_CONFIG_FILE")
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("failed to load config file %s", configFile), err)
		}
	}

	if err := envconfig.Process("TSE", cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}
	return nil
}
