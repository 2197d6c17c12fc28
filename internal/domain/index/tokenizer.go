package index

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words splits text into whitespace-separated words.
// Rules:
//  1. Split on any run of Unicode whitespace
//  2. No punctuation stripping: "muscle," stays "muscle,"
//  3. No case folding (the index normalizes on lookup)
//
// Trailing punctuation therefore blocks a match against "muscle". That is a
// known limitation of the mention scan, kept so that word positions line up
// with what the reader sees.
func Words(text string) []string {
	if len(text) == 0 {
		return nil
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	return words
}

// collapseSpace trims s and replaces every inner whitespace run with a single
// ASCII space.
func collapseSpace(s string) string {
	if !needsCollapse(s) {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// needsCollapse reports whether s has leading/trailing whitespace or any
// whitespace other than single ASCII spaces between words.
func needsCollapse(s string) bool {
	prevSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if r != ' ' || prevSpace {
				return true
			}
			prevSpace = true
			continue
		}
		prevSpace = false
	}
	return prevSpace && len(s) > 0
}

// runeLen returns the number of runes in s.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
