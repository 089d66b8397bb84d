// Package filters is the content-quality engine: spam heuristics, text
// similarity, and duplicate detection for incoming relief requests. It is
// deliberately conservative: every rule is biased toward letting a genuine
// request through, since the rules compound and a false rejection here turns
// away someone asking for help.
package filters

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Submission is the ephemeral candidate under evaluation. It mirrors the
// fields a requester submits; it is not the persisted record.
type Submission struct {
	Title           string
	Description     string
	RequestType     string
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	Latitude        float64
	Longitude       float64
	Address         string
	Landmark        string
	PeopleAffected  int
	EstimatedCost   float64
	AdditionalNotes string
}

// SpamClassifier applies the ruleset's heuristics to single submissions.
// It never compares against other records; that is the duplicate detector's
// job.
type SpamClassifier struct {
	rules *Ruleset
}

func NewSpamClassifier(rules *Ruleset) *SpamClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &SpamClassifier{rules: rules}
}

// IsSpam reports whether the submission trips any spam heuristic. The
// decision is a plain OR over independent rules; there is no scoring or
// weighting at this gate.
func (c *SpamClassifier) IsSpam(sub Submission) bool {
	combined := NormalizeText(strings.Join([]string{
		sub.Title,
		sub.Description,
		sub.ContactName,
		sub.Address,
		sub.AdditionalNotes,
	}, " "))

	keywordHits := 0
	for _, keyword := range c.rules.SpamKeywords {
		if strings.Contains(combined, keyword) {
			keywordHits++
		}
	}
	if keywordHits >= 3 {
		return true
	}

	for _, re := range c.rules.compiled {
		if re.MatchString(combined) {
			return true
		}
	}

	if sub.PeopleAffected > 1000 {
		return true
	}

	// A title whose words are almost entirely contained in the description
	// signals a template-stuffed submission.
	titleWords := tokenSet(sub.Title)
	descWords := tokenSet(sub.Description)
	shared := 0
	for w := range titleWords {
		if _, ok := descWords[w]; ok {
			shared++
		}
	}
	if float64(shared) > float64(len(titleWords))*0.8 {
		return true
	}

	descLen := utf8.RuneCountInString(sub.Description)
	if descLen < 20 || descLen > 5000 {
		return true
	}

	digits := phoneDigits(sub.ContactPhone)
	if len(digits) < 10 || len(digits) > 15 {
		return true
	}
	if distinctRunes(digits) <= 2 {
		return true
	}

	return false
}

// QualityScore rates submission completeness on a 0..1 scale for triage
// ranking. It never rejects anything; low quality just sorts later.
func (c *SpamClassifier) QualityScore(sub Submission) float64 {
	score := 0.0

	switch titleLen := utf8.RuneCountInString(sub.Title); {
	case titleLen >= 20 && titleLen <= 100:
		score += 20
	case titleLen >= 10 && titleLen <= 200:
		score += 15
	default:
		score += 5
	}

	switch descLen := utf8.RuneCountInString(sub.Description); {
	case descLen >= 100 && descLen <= 1000:
		score += 30
	case descLen >= 50 && descLen <= 2000:
		score += 25
	case descLen >= 20 && descLen <= 50:
		score += 15
	default:
		score += 5
	}

	if sub.ContactEmail != "" {
		score += 10
	}
	if len(phoneDigits(sub.ContactPhone)) >= 10 {
		score += 10
	}

	if sub.Landmark != "" {
		score += 5
	}
	if utf8.RuneCountInString(sub.Address) >= 20 {
		score += 10
	}

	if utf8.RuneCountInString(sub.AdditionalNotes) > 10 {
		score += 10
	}
	if sub.EstimatedCost > 0 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score / 100
}

// SuspicionFlags returns human-readable reasons a moderator should look at
// the submission. Flags are advisory only and never block a submission.
func (c *SpamClassifier) SuspicionFlags(sub Submission) []string {
	var flags []string

	combined := strings.Join([]string{
		sub.Title,
		sub.Description,
		sub.ContactName,
		sub.Address,
	}, " ")

	lowered := NormalizeText(combined)
	for _, keyword := range c.rules.SpamKeywords {
		if strings.Contains(lowered, keyword) {
			flags = append(flags, "Contains potential spam keywords")
			break
		}
	}

	if sub.PeopleAffected > 100 {
		flags = append(flags, "Unusually high number of people affected")
	}

	if sub.EstimatedCost > 100000 {
		flags = append(flags, "Very high estimated cost")
	}

	if isShouting(combined) {
		flags = append(flags, "All caps text (shouting)")
	}

	stripped := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(sub.ContactPhone)
	if distinctRunes(stripped) <= 3 {
		flags = append(flags, "Suspicious phone number pattern")
	}

	// (0,0) is the classic default for uninitialized coordinates.
	if abs(sub.Latitude) < 0.001 && abs(sub.Longitude) < 0.001 {
		flags = append(flags, "Coordinates too close to 0,0")
	}

	return flags
}

// Evaluate bundles the triage outputs for callers that want both.
func (c *SpamClassifier) Evaluate(sub Submission) (float64, []string) {
	return c.QualityScore(sub), c.SuspicionFlags(sub)
}

func phoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func distinctRunes(s string) int {
	set := make(map[rune]struct{})
	for _, r := range s {
		set[r] = struct{}{}
	}
	return len(set)
}

// isShouting mirrors Python's str.isupper: true when the text has at least
// one letter and no lowercase letters.
func isShouting(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
