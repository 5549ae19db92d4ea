package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/beekhof/timekit"
)

// Config holds the configuration for the timekit command line tool.
type Config struct {
	App             string `json:"app" validate:"required"`
	APIBaseURL      string `json:"api_base_url,omitempty" validate:"required,url"`
	APIVersion      string `json:"api_version,omitempty" validate:"required"`
	Timezone        string `json:"timezone,omitempty"`
	CredentialsPath string `json:"credentials_path,omitempty" validate:"required"`
}

// Settings converts the configuration into client settings.
func (c *Config) Settings() timekit.Settings {
	return timekit.Settings{
		App:        c.App,
		APIBaseURL: c.APIBaseURL,
		APIVersion: c.APIVersion,
		Timezone:   c.Timezone,
	}
}

// Overrides are values given on the command line. Empty fields are ignored.
type Overrides struct {
	App             string
	APIBaseURL      string
	Timezone        string
	CredentialsPath string
}

// environment is the TIMEKIT_* layer. Unset variables leave the field empty.
type environment struct {
	App             string `envconfig:"TIMEKIT_APP"`
	APIBaseURL      string `envconfig:"TIMEKIT_API_BASE_URL"`
	APIVersion      string `envconfig:"TIMEKIT_API_VERSION"`
	Timezone        string `envconfig:"TIMEKIT_TIMEZONE"`
	CredentialsPath string `envconfig:"TIMEKIT_CREDENTIALS_PATH"`
}

var validate = validator.New()

// LoadConfigFromFile loads configuration from a JSON file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration with the following precedence (highest to lowest):
// 1. Command-line flags
// 2. Environment variables (TIMEKIT_*)
// 3. Config file
// 4. Defaults
// Returns an error if the result does not validate.
func LoadConfig(configFile string, flags Overrides) (*Config, error) {
	var config Config

	// Step 1: Load from config file if provided
	if configFile != "" {
		fileConfig, err := LoadConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
		config = *fileConfig
	}

	// Step 2: Override with environment variables
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	override(&config.App, env.App)
	override(&config.APIBaseURL, env.APIBaseURL)
	override(&config.APIVersion, env.APIVersion)
	override(&config.Timezone, env.Timezone)
	override(&config.CredentialsPath, env.CredentialsPath)

	// Step 3: Override with command-line flags (highest priority)
	override(&config.App, flags.App)
	override(&config.APIBaseURL, flags.APIBaseURL)
	override(&config.Timezone, flags.Timezone)
	override(&config.CredentialsPath, flags.CredentialsPath)

	// Step 4: Apply defaults and validate
	if config.APIBaseURL == "" {
		config.APIBaseURL = timekit.DefaultAPIBaseURL
	}
	if config.APIVersion == "" {
		config.APIVersion = timekit.DefaultAPIVersion
	}
	if config.CredentialsPath == "" {
		config.CredentialsPath = DefaultCredentialsPath()
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultCredentialsPath is ~/.timekit/credentials.json, or
// .timekit-credentials.json in the working directory when there is no home.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".timekit-credentials.json"
	}
	return filepath.Join(home, ".timekit", "credentials.json")
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
