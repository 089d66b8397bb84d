package provider

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anas-fareedi/disaster-management/internal/filters"
)

// ProviderType identifies which urgency classifier to use.
type ProviderType string

const (
	ProviderKeyword ProviderType = "keyword"
	ProviderRemote  ProviderType = "remote"
)

// DefaultTimeout bounds a single remote classification call.
const DefaultTimeout = 10 * time.Second

// Config holds configuration for the urgency classifier.
type Config struct {
	// Provider type: "keyword" or "remote"
	Provider ProviderType

	// Remote-specific config
	ModelURL string
	APIKey   string
	Timeout  time.Duration

	// Keyword lists shared with the content filters. The keyword
	// provider falls back to the built-in lists when nil.
	Rules *filters.Ruleset
}

// LoadFromEnv loads urgency classifier configuration from environment
// variables.
//
// Environment variables:
//   - URGENCY_PROVIDER: "keyword" or "remote" (default: "keyword")
//   - URGENCY_MODEL_URL: endpoint of the hosted model (required if using remote)
//   - URGENCY_MODEL_KEY: API key sent to the hosted model (optional)
//   - URGENCY_TIMEOUT_SECONDS: per-call timeout for the remote model (default: 10)
func LoadFromEnv() Config {
	providerStr := strings.ToLower(strings.TrimSpace(os.Getenv("URGENCY_PROVIDER")))

	var provider ProviderType
	switch providerStr {
	case "remote":
		provider = ProviderRemote
	case "", "keyword":
		provider = ProviderKeyword
	default:
		provider = ProviderType(providerStr)
	}

	timeout := DefaultTimeout
	if raw := strings.TrimSpace(os.Getenv("URGENCY_TIMEOUT_SECONDS")); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	return Config{
		Provider: provider,
		ModelURL: strings.TrimSpace(os.Getenv("URGENCY_MODEL_URL")),
		APIKey:   os.Getenv("URGENCY_MODEL_KEY"),
		Timeout:  timeout,
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c Config) Validate() error {
	if c.Provider == ProviderRemote && c.ModelURL == "" {
		return ErrMissingModelURL
	}
	return nil
}
