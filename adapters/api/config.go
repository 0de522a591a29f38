package api

import (
	"net/http"
	"time"
)

// Config holds configuration for the prediction backend client
type Config struct {
	BaseURL   string
	Timeout   time.Duration // 0 disables the client-side timeout
	UserAgent string

	// HTTPClient overrides the client built from Timeout, mostly for tests
	HTTPClient *http.Client
}

// DefaultConfig returns the local development backend settings
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://127.0.0.1:8000",
		UserAgent: "pricedash",
	}
}
