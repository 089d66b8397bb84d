// Package remote calls a separately hosted text-classification model to
// score request urgency. The model owns its own training lifecycle; this
// package only speaks its prediction endpoint.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anas-fareedi/disaster-management/internal/urgency/provider"
)

// RemoteProvider implements UrgencyProvider against the hosted model.
type RemoteProvider struct {
	client *Client
}

// Ensure RemoteProvider implements UrgencyProvider.
var _ provider.UrgencyProvider = (*RemoteProvider)(nil)

// init registers the remote provider in the provider registry.
func init() {
	provider.Register(provider.ProviderRemote, func(cfg provider.Config) (provider.UrgencyProvider, error) {
		return NewProvider(cfg.ModelURL, cfg.APIKey, cfg.Timeout), nil
	})
}

// NewProvider creates a RemoteProvider for the given model endpoint.
func NewProvider(modelURL, apiKey string, timeout time.Duration) *RemoteProvider {
	return &RemoteProvider{
		client: NewClient(modelURL, apiKey, timeout),
	}
}

// Name returns the provider name.
func (p *RemoteProvider) Name() string {
	return "remote"
}

// Classify sends the combined text to the model and maps its prediction
// onto an urgency level.
func (p *RemoteProvider) Classify(ctx context.Context, title, description string) (string, error) {
	start := time.Now()

	prediction, err := p.client.Predict(ctx, strings.TrimSpace(title+" "+description))
	if err != nil {
		provider.LogError("remote", "classify", err)
		return "", err
	}

	level := strings.ToLower(strings.TrimSpace(prediction.PredictedUrgency))
	switch level {
	case "low", "medium", "high", "critical":
		provider.LogClassification("remote", level, prediction.Confidence, time.Since(start))
		return level, nil
	}
	return "", fmt.Errorf("model returned unknown urgency class %q", prediction.PredictedUrgency)
}

// HealthCheck makes a minimal prediction request to verify the model is
// reachable.
func (p *RemoteProvider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Predict(ctx, "health check")
	return err
}
