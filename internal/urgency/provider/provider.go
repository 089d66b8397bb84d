package provider

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMissingModelURL = errors.New("URGENCY_MODEL_URL environment variable is required for remote provider")
	ErrUnknownProvider = errors.New("unknown provider type")
)

// UrgencyProvider is the interface all urgency classifiers implement.
// It abstracts the difference between the built-in keyword heuristic and
// the remotely hosted text-classification model.
type UrgencyProvider interface {
	// Name returns the provider name for logging purposes.
	Name() string

	// Classify returns an urgency level (low, medium, high or critical)
	// for a request's title and description.
	Classify(ctx context.Context, title, description string) (string, error)

	// HealthCheck verifies the provider can serve classifications.
	HealthCheck(ctx context.Context) error
}

// providerRegistry holds registered provider constructors so new
// providers can be added without modifying this file.
var providerRegistry = make(map[ProviderType]func(Config) (UrgencyProvider, error))

// Register registers a provider constructor for a given provider type.
// This should be called from init() in each provider package.
func Register(providerType ProviderType, constructor func(Config) (UrgencyProvider, error)) {
	providerRegistry[providerType] = constructor
}

// NewProvider creates an UrgencyProvider based on the configuration.
// It returns an error if the configuration is invalid or the provider is
// unknown.
func NewProvider(cfg Config) (UrgencyProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	constructor, ok := providerRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	return constructor(cfg)
}
