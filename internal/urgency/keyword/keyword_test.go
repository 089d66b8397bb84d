package keyword

import (
	"context"
	"testing"

	"github.com/anas-fareedi/disaster-management/internal/filters"
	"github.com/anas-fareedi/disaster-management/internal/urgency/provider"
)

// TestClassify_Ladder walks the scoring ladder with the built-in lists.
func TestClassify_Ladder(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{
			name:        "two strong indicators",
			title:       "Trapped under debris",
			description: "Three people stuck after the wall came down, send rescue teams",
			want:        "high",
		},
		{
			name:        "single life threat word",
			title:       "People dying",
			description: "The water keeps rising on the east bank",
			want:        "high",
		},
		{
			name:        "one strong indicator",
			title:       "Send an ambulance",
			description: "An elderly man fainted near the relief camp gate",
			want:        "medium",
		},
		{
			name:        "two impact words",
			title:       "Storm damage",
			description: "Power lines down across three wards after last night",
			want:        "medium",
		},
		{
			name:        "single impact word",
			title:       "Crops affected",
			description: "Standing paddy has gone under in the low fields",
			want:        "medium",
		},
		{
			name:        "routine request",
			title:       "Blankets requested",
			description: "Warm clothes for children at the community hall",
			want:        "low",
		},
		{
			name:        "case and accents ignored",
			title:       "TRAPPED",
			description: "RESCUE needed on the second floor",
			want:        "high",
		},
	}

	p := NewProvider(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Classify(context.Background(), tt.title, tt.description)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.title+" "+tt.description, got, tt.want)
			}
		})
	}
}

// TestClassify_NeverCritical verifies the heuristic leaves critical to human
// triage even for the most loaded text.
func TestClassify_NeverCritical(t *testing.T) {
	p := NewProvider(nil)

	got, err := p.Classify(context.Background(),
		"Emergency rescue trapped dying",
		"Critical casualties, collapsed building, people screaming, send help immediately")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got == "critical" {
		t.Error("keyword heuristic must not return critical")
	}
	if got != "high" {
		t.Errorf("Classify() = %q, want high", got)
	}
}

// TestClassify_CustomRules verifies the provider scores against an injected
// ruleset rather than hard-coded lists.
func TestClassify_CustomRules(t *testing.T) {
	rules := &filters.Ruleset{
		UrgencyHigh: []string{"cyclone", "surge"},
	}
	p := NewProvider(rules)

	got, err := p.Classify(context.Background(), "Cyclone surge", "Sea water entering the fishing village")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got != "high" {
		t.Errorf("Classify() with custom rules = %q, want high", got)
	}
}

// TestRegistry verifies the keyword provider self-registers and is built by
// the registry from a plain config.
func TestRegistry(t *testing.T) {
	p, err := provider.NewProvider(provider.Config{Provider: provider.ProviderKeyword})
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	if p.Name() != "keyword" {
		t.Errorf("provider name = %q, want keyword", p.Name())
	}
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
}
