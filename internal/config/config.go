package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"pricedash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	API      APIConfig
	Server   ServerConfig
	Database DatabaseConfig
	UI       UIConfig
	DevAPI   DevAPIConfig
}

// APIConfig holds prediction backend settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration // 0 means no client-side timeout
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig selects the preference store backend
type DatabaseConfig struct {
	Driver string // memory, sqlite or postgres
	URL    string
}

// UIConfig holds dashboard behaviour settings
type UIConfig struct {
	DefaultView       string
	ToastTTL          time.Duration
	PatchDebounce     time.Duration
	DistributionBins  int
	SessionIdleExpiry time.Duration
}

// DevAPIConfig holds settings for the local backend stub
type DevAPIConfig struct {
	Port        string
	DatasetFile string
	CORSOrigins []string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		API:      loadAPIConfig(),
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		UI:       loadUIConfig(),
		DevAPI:   loadDevAPIConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAPIConfig() APIConfig {
	return APIConfig{
		BaseURL: strings.TrimRight(getEnvOrDefault("API_BASE_URL", "http://127.0.0.1:8000"), "/"),
		Timeout: getEnvDurationOrDefault("HTTP_TIMEOUT", 0),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	url := os.Getenv("DATABASE_URL")
	driver := getEnvOrDefault("DB_DRIVER", "")
	if driver == "" {
		switch {
		case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
			driver = "postgres"
		case url != "":
			driver = "sqlite"
		default:
			driver = "memory"
		}
	}
	return DatabaseConfig{Driver: driver, URL: url}
}

func loadUIConfig() UIConfig {
	return UIConfig{
		DefaultView:       getEnvOrDefault("DEFAULT_VIEW", "overview"),
		ToastTTL:          getEnvDurationOrDefault("TOAST_TTL", 4*time.Second),
		PatchDebounce:     getEnvDurationOrDefault("PATCH_DEBOUNCE", 50*time.Millisecond),
		DistributionBins:  getEnvIntOrDefault("DISTRIBUTION_BINS", 20),
		SessionIdleExpiry: getEnvDurationOrDefault("SESSION_IDLE_EXPIRY", 2*time.Hour),
	}
}

func loadDevAPIConfig() DevAPIConfig {
	var origins []string
	for _, o := range strings.Split(getEnvOrDefault("CORS_ORIGINS", "http://localhost:*,http://127.0.0.1:*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return DevAPIConfig{
		Port:        getEnvOrDefault("DEVAPI_PORT", "8000"),
		DatasetFile: getEnvOrDefault("DATASET_FILE", ""),
		CORSOrigins: origins,
	}
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("API_BASE_URL must be an absolute http(s) URL")
	}
	switch config.Database.Driver {
	case "memory":
	case "sqlite", "postgres":
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for driver " + config.Database.Driver)
		}
	default:
		return errors.ConfigInvalid("unsupported DB_DRIVER: " + config.Database.Driver)
	}
	if config.UI.DefaultView == "" {
		return errors.ConfigInvalid("DEFAULT_VIEW cannot be empty")
	}
	if config.UI.DistributionBins <= 0 {
		return errors.ConfigInvalid("DISTRIBUTION_BINS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
