package filters

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ruleset carries the heuristic rule lists as data so deployments can tune
// them without touching control flow. Every classifier and the keyword
// urgency provider take a Ruleset at construction.
type Ruleset struct {
	SpamKeywords       []string `yaml:"spam_keywords"`
	SuspiciousPatterns []string `yaml:"suspicious_patterns"`

	// Urgency keyword sets, consumed by the keyword urgency provider.
	// "any" lists trigger on a single hit; the counted lists need the
	// thresholds documented on the provider.
	UrgencyHighAny   []string `yaml:"urgency_high_any"`
	UrgencyHigh      []string `yaml:"urgency_high"`
	UrgencyMedium    []string `yaml:"urgency_medium"`
	UrgencyMediumAny []string `yaml:"urgency_medium_any"`

	compiled []*regexp.Regexp
}

// DefaultRules returns the built-in rule lists. These match the shipped
// internal/filters/data/rules.yaml; the file exists so operators can edit
// rules in place and point FILTER_RULES_PATH at the result.
func DefaultRules() *Ruleset {
	rs := &Ruleset{
		SpamKeywords: []string{
			"test", "testing", "fake", "dummy", "sample",
			"spam", "advertisement", "promotion", "offer",
			"click here", "buy now", "free money", "lottery",
			"congratulations", "winner", "prize",
		},
		SuspiciousPatterns: []string{
			`(.)\1{5,}`,            // runs of one repeated character
			`[0-9]{10,}`,           // long digit sequences
			`[A-Z]{10,}`,           // long runs of capitals
			`www\.[a-z]+\.[a-z]+`,  // bare URLs
			`http[s]?://`,          // links
			`[a-z]+(\.[a-z]+){2,}`, // domain-like tokens
		},
		UrgencyHighAny: []string{
			"help", "rescue", "emergency", "trapped", "dying",
		},
		UrgencyHigh: []string{
			"trapped", "help", "rescue", "emergency", "urgent", "dying", "dead", "casualties",
			"injured", "stuck", "stranded", "please help", "need help", "immediately", "now",
			"asap", "critical", "life threatening", "ambulance", "hospital", "evacuation",
			"collapsed", "explosion", "fire", "burning", "drowning", "blood", "screaming",
		},
		UrgencyMedium: []string{
			"damage", "affected", "impact", "disruption", "power outage", "road closed",
			"warning", "alert", "shelter", "evacuate", "flooding", "storm", "earthquake",
			"tornado", "hurricane", "wildfire", "landslide", "accident", "crash",
		},
		UrgencyMediumAny: []string{
			"damage", "affected", "storm", "flood", "fire", "earthquake",
		},
	}

	if err := rs.compile(); err != nil {
		// The built-in patterns are static; failing to compile them is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return rs
}

// LoadRules reads a YAML rules file. Lists left empty in the file fall back
// to the built-in defaults, so a deployment can override just one category.
func LoadRules(path string) (*Ruleset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	rs := &Ruleset{}
	if err := yaml.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	defaults := DefaultRules()
	if len(rs.SpamKeywords) == 0 {
		rs.SpamKeywords = defaults.SpamKeywords
	}
	if len(rs.SuspiciousPatterns) == 0 {
		rs.SuspiciousPatterns = defaults.SuspiciousPatterns
	}
	if len(rs.UrgencyHighAny) == 0 {
		rs.UrgencyHighAny = defaults.UrgencyHighAny
	}
	if len(rs.UrgencyHigh) == 0 {
		rs.UrgencyHigh = defaults.UrgencyHigh
	}
	if len(rs.UrgencyMedium) == 0 {
		rs.UrgencyMedium = defaults.UrgencyMedium
	}
	if len(rs.UrgencyMediumAny) == 0 {
		rs.UrgencyMediumAny = defaults.UrgencyMediumAny
	}

	if err := rs.compile(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *Ruleset) compile() error {
	rs.compiled = make([]*regexp.Regexp, 0, len(rs.SuspiciousPatterns))
	for _, pattern := range rs.SuspiciousPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("compiling suspicious pattern %q: %w", pattern, err)
		}
		rs.compiled = append(rs.compiled, re)
	}
	return nil
}

// NormalizeText lower-cases and strips diacritics so keyword matching cannot
// be dodged with lookalike characters ("tëst" matches "test"). Plain ASCII
// comes through unchanged apart from case.
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
