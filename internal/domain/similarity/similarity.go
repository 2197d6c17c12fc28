// Package similarity detects near-duplicate concept names using normalized
// Levenshtein similarity.
package similarity

import "strings"

// DefaultThreshold is the minimum similarity for two names to count as
// near-duplicates.
const DefaultThreshold = 0.9

// Policy selects which candidate FindSimilar reports when several clear the
// threshold.
type Policy int

const (
	// FirstMatch returns the first candidate, in the order given, that clears
	// the threshold. Deterministic, not necessarily the closest.
	FirstMatch Policy = iota
	// BestMatch returns the highest-scoring candidate; the earliest wins ties.
	BestMatch
)

// String returns the policy name used in configuration files.
func (p Policy) String() string {
	switch p {
	case BestMatch:
		return "best"
	default:
		return "first"
	}
}

// ParsePolicy maps "first" / "best" to a Policy. Unknown names yield
// FirstMatch and false.
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstMatch, true
	case "best":
		return BestMatch, true
	}
	return FirstMatch, false
}

// Levenshtein returns the edit distance between a and b, counted in runes,
// with unit cost for insert, delete and substitute.
//
// Uses two rolling rows sized to the shorter string, so space is
// O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// ra is the shorter
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			if ra[i-1] == rb[j-1] {
				curr[i] = prev[i-1]
			} else {
				curr[i] = 1 + min(prev[i-1], prev[i], curr[i-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

// Similarity returns (maxLen - distance) / maxLen over the case-folded
// inputs, in [0, 1]. Two empty strings are identical (1.0).
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}

// FindSimilar returns the first candidate whose similarity to name is at
// least threshold and which is not the same string case-insensitively.
func FindSimilar(name string, candidates []string, threshold float64) (string, bool) {
	m := Matcher{Threshold: threshold, Policy: FirstMatch}
	i, ok := m.Find(name, candidates)
	if !ok {
		return "", false
	}
	return candidates[i], true
}

// Matcher is a configured near-duplicate detector.
type Matcher struct {
	Threshold float64
	Policy    Policy
}

// Find returns the index in candidates of the near-duplicate of name chosen
// by the policy.
func (m Matcher) Find(name string, candidates []string) (int, bool) {
	folded := strings.ToLower(name)
	best, bestScore := -1, -1.0
	for i, c := range candidates {
		if strings.ToLower(c) == folded {
			continue
		}
		score := Similarity(name, c)
		if score < m.Threshold {
			continue
		}
		if m.Policy == FirstMatch {
			return i, true
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, best >= 0
}
