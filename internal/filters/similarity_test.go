package filters_test

import (
	"math"
	"testing"

	"github.com/anas-fareedi/disaster-management/internal/filters"
)

// TestTextSimilarity covers the Jaccard contract: set-based overlap of
// lower-cased whitespace tokens.
func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "need food and water", "need food and water", 1.0},
		{"no overlap", "need food supplies", "roof collapsed yesterday", 0.0},
		{"both empty", "", "", 0.0},
		{"one empty", "need food", "", 0.0},
		{"case insensitive", "Need FOOD", "need food", 1.0},
		{"duplicates collapse", "food food food water", "food water", 1.0},
		{"partial overlap", "a b", "b c", 1.0 / 3.0},
		{"whitespace only", "   ", " \t ", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filters.TextSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TextSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestTextSimilarity_Symmetric verifies sim(a,b) == sim(b,a).
func TestTextSimilarity_Symmetric(t *testing.T) {
	a := "house flooded need food and water"
	b := "need water food for flooded house in patna"

	ab := filters.TextSimilarity(a, b)
	ba := filters.TextSimilarity(b, a)
	if ab != ba {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

// TestTextSimilarity_Range verifies scores stay in [0,1] for assorted input.
func TestTextSimilarity_Range(t *testing.T) {
	pairs := [][2]string{
		{"a", "a b c d e f"},
		{"x y z", "z"},
		{"one two", "three four"},
	}

	for _, p := range pairs {
		got := filters.TextSimilarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("TextSimilarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}
