package search

import (
	"regexp"
	"strings"
)

const (
	occurrenceWeight = 0.2
	prefixBonus      = 0.3
	wholeWordBonus   = 0.2
)

// scorer holds the per-query derived state so one query can score many
// candidate texts.
type scorer struct {
	lowerQuery string
	wordRe     *regexp.Regexp
}

func newScorer(q string) *scorer {
	return &scorer{
		lowerQuery: strings.ToLower(q),
		wordRe:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(q) + `\b`),
	}
}

// score rates a matched text in [0, 1]:
//   - 0.2 per non-overlapping occurrence, capped at 1.0
//   - +0.3 when the text starts with the query
//   - +0.2 when the query appears as a whole word
func (s *scorer) score(text string) float64 {
	lower := strings.ToLower(text)

	occurrences := strings.Count(lower, s.lowerQuery)
	score := float64(occurrences) * occurrenceWeight
	if score > 1.0 {
		score = 1.0
	}

	if strings.HasPrefix(lower, s.lowerQuery) {
		score += prefixBonus
	}
	if s.wordRe.MatchString(text) {
		score += wholeWordBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}
