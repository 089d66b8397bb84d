// Package keyword classifies request urgency from the text alone, using
// the same rule lists the content filters load. It needs no network and
// no model artifacts, so it is the default provider.
package keyword

import (
	"context"
	"strings"

	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/urgency/provider"
)

// KeywordProvider scores text against tiered urgency keyword lists.
type KeywordProvider struct {
	rules *filters.Ruleset
}

// Ensure KeywordProvider implements UrgencyProvider.
var _ provider.UrgencyProvider = (*KeywordProvider)(nil)

// init registers the keyword provider in the provider registry.
func init() {
	provider.Register(provider.ProviderKeyword, func(cfg provider.Config) (provider.UrgencyProvider, error) {
		return NewProvider(cfg.Rules), nil
	})
}

// NewProvider creates a KeywordProvider. A nil ruleset selects the
// built-in lists.
func NewProvider(rules *filters.Ruleset) *KeywordProvider {
	if rules == nil {
		rules = filters.DefaultRules()
	}
	return &KeywordProvider{rules: rules}
}

// Name returns the provider name.
func (p *KeywordProvider) Name() string {
	return "keyword"
}

// Classify walks the urgency ladder: two or more strong indicators (or a
// single life-threat word) mean high; one strong indicator, or a couple
// of impact words, mean medium; anything else is low. The heuristic
// never returns critical, that level is reserved for human triage.
func (p *KeywordProvider) Classify(ctx context.Context, title, description string) (string, error) {
	text := filters.NormalizeText(title + " " + description)

	highCount := countHits(text, p.rules.UrgencyHigh)
	if highCount >= 2 {
		return "high", nil
	}
	for _, word := range p.rules.UrgencyHighAny {
		if strings.Contains(text, word) {
			return "high", nil
		}
	}

	if highCount >= 1 {
		return "medium", nil
	}
	if countHits(text, p.rules.UrgencyMedium) >= 2 {
		return "medium", nil
	}
	for _, word := range p.rules.UrgencyMediumAny {
		if strings.Contains(text, word) {
			return "medium", nil
		}
	}

	return "low", nil
}

// HealthCheck always succeeds, the keyword lists are in memory.
func (p *KeywordProvider) HealthCheck(ctx context.Context) error {
	return nil
}

func countHits(text string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}
