// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching.
package ahocorasick

import (
	"sync"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/vaultlink/internal/ports"
)

// Matcher implements ports.PatternMatcher over a set of index keys.
// The mention scanner uses it as a line prefilter: a normalized line that
// contains no key as a substring cannot produce a match, so it is skipped
// before the window scan. Rebuild may run concurrently with Match.
type Matcher struct {
	mu        sync.RWMutex
	automaton aho.AhoCorasick
	keywords  []string
}

var _ ports.PatternMatcher = (*Matcher)(nil)

// New returns a matcher compiled from keywords.
func New(keywords []string) *Matcher {
	m := &Matcher{}
	m.Rebuild(keywords)
	return m
}

// Rebuild replaces the automaton with a new set of keywords. Empty keywords
// are dropped.
func (m *Matcher) Rebuild(keywords []string) {
	kept := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != "" {
			kept = append(kept, kw)
		}
	}

	var automaton aho.AhoCorasick
	if len(kept) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		automaton = builder.Build(kept)
	}

	m.mu.Lock()
	m.automaton = automaton
	m.keywords = kept
	m.mu.Unlock()
}

// Match returns the distinct keywords found in content, in order of first
// occurrence, or nil. Matching is case-sensitive; callers normalize first.
func (m *Matcher) Match(content string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.keywords) == 0 || content == "" {
		return nil
	}
	matches := m.automaton.FindAll(content)
	if len(matches) == 0 {
		return nil
	}

	// Deduplicate by keyword
	seen := make(map[string]bool, len(matches))
	var result []string
	for i := range matches {
		kw := m.keywords[matches[i].Pattern()]
		if !seen[kw] {
			seen[kw] = true
			result = append(result, kw)
		}
	}
	return result
}

// Len returns the number of compiled keywords.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keywords)
}
