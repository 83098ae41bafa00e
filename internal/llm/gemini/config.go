package gemini

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	defaultModel   = "gemini-2.0-flash-001"
	defaultTimeout = 45 * time.Second
)

// Config is read from the environment so the provider registry can build a
// client without the app config.
type Config struct {
	APIKey string
	Model  string
	// Timeout bounds one generation call. It stays under the router's 60s
	// deadline so a slow model still gets a JSON error back to the caller.
	Timeout time.Duration
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	cfg := &Config{APIKey: apiKey, Model: defaultModel, Timeout: defaultTimeout}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Model = model
	}
	if raw := os.Getenv("GEMINI_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("GEMINI_TIMEOUT must be a positive duration, got %q", raw)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
