package ports

// PatternMatcher finds registered terms in content using multi-pattern
// matching (Aho-Corasick). A single pass over the content finds all matching
// patterns simultaneously, regardless of how many patterns are in the set.
//
// The mention scanner uses it as a line prefilter: a line in which no indexed
// term occurs as a substring cannot produce a match, so the word-window scan
// is skipped for it.
//
// The matcher must be rebuilt when the term set changes (after a build or a
// refresh that re-indexed at least one document).
type PatternMatcher interface {
	// Match returns all patterns found in content, deduplicated. Returns nil
	// if nothing matches. Content is matched as-is (caller normalizes case).
	Match(content string) []string

	// Rebuild replaces the entire pattern set and reconstructs the automaton.
	// Empty patterns are ignored.
	Rebuild(patterns []string)
}
