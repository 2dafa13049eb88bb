package viral

import (
	"strings"
	"unicode"
)

// Component weights of the final score.
const (
	keywordWeight   = 0.4
	lengthWeight    = 0.25
	structureWeight = 0.35
)

// Scorer assigns engagement scores to candidate text blocks. A Scorer is
// immutable and safe for concurrent use.
type Scorer struct {
	keywords map[string]float64
}

func NewScorer(keywords map[string]float64) *Scorer {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	return &Scorer{keywords: keywords}
}

// Score returns an engagement score in [0,1] for one candidate block.
//
// The keyword component is the raw sum of matched weights, deliberately not
// normalized by keyword count: dense text saturates at the final clamp and
// further ranking falls back to the earliest-start tie-break.
func (s *Scorer) Score(text string) float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0
	}
	lower := strings.ToLower(t)

	var kw float64
	for keyword, weight := range s.keywords {
		if strings.Contains(lower, keyword) {
			kw += weight
		}
	}

	score := kw*keywordWeight + lengthComponent(t)*lengthWeight + structureComponent(t, lower)*structureWeight
	return clamp(score, 0, 1)
}

// lengthComponent rewards the 50-150 word sweet spot for narrated shorts.
func lengthComponent(t string) float64 {
	n := len(strings.Fields(t))
	switch {
	case n >= 50 && n <= 150:
		return 1.0
	case n >= 30 && n <= 200:
		return 0.8
	case n >= 20 && n <= 300:
		return 0.6
	default:
		return 0.3
	}
}

// structureComponent is not clamped on its own; only the final score is.
func structureComponent(t, lower string) float64 {
	var sc float64
	if strings.Contains(t, "?") {
		sc += 0.3
	}
	if strings.Contains(t, "!") {
		sc += 0.2
	}
	for _, p := range determinerPrefixes {
		if strings.HasPrefix(t, p) {
			sc += 0.1
			break
		}
	}
	for _, w := range interrogatives {
		if containsWord(lower, w) {
			sc += 0.2
			break
		}
	}
	var emotion float64
	for _, w := range emotionWords {
		if strings.Contains(lower, w) {
			emotion += 0.1
		}
	}
	if emotion > 0.3 {
		emotion = 0.3
	}
	sc += emotion
	if strings.ContainsFunc(t, unicode.IsDigit) {
		sc += 0.1
	}
	for _, m := range listMarkers {
		if strings.Contains(lower, m) {
			sc += 0.2
			break
		}
	}
	return sc
}

// containsWord reports whether lower contains w as a whole word rather than
// as a substring of a longer word ("who" must not match "whole").
func containsWord(lower, w string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], w)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordRune(rune(lower[i-1]))
		afterIdx := i + len(w)
		after := afterIdx >= len(lower) || !isWordRune(rune(lower[afterIdx]))
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
