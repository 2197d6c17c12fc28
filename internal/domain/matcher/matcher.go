// Package matcher finds multi-word term occurrences in a line of text and
// resolves overlapping candidates longest-first.
package matcher

import (
	"sort"
	"strings"

	"github.com/corey/vaultlink/internal/domain/index"
	"github.com/corey/vaultlink/internal/ports"
)

// DefaultMaxWords is the widest window tried when Options.MaxWords is unset.
const DefaultMaxWords = 5

// Lookuper resolves a phrase to the documents that own it. The implementation
// owns key normalization (case folding, whitespace).
type Lookuper interface {
	Lookup(term string) []ports.DocID
}

// Options controls the window scan and overlap resolution.
type Options struct {
	MaxWords     int  // widest phrase, in words, to look up
	PreferLonger bool // resolve overlaps longest-first; false returns every candidate
}

// DefaultOptions returns MaxWords=5 with overlap resolution on.
func DefaultOptions() Options {
	return Options{MaxWords: DefaultMaxWords, PreferLonger: true}
}

// Span is a run of words in the scanned text that matched an indexed term.
type Span struct {
	Start int           // first word index, inclusive
	End   int           // last word index, exclusive
	Words int           // End - Start
	Text  string        // matched words joined by single spaces, original case
	Docs  []ports.DocID // candidate documents, ascending
}

// Overlaps reports whether two spans share a word position.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// FindMatches scans text for indexed terms.
//
// The text is split on whitespace. For every window width from MaxWords down
// to 1, and every start position, the joined phrase is looked up; each hit is
// a candidate. Candidates are therefore produced in scan order: decreasing
// width, then increasing start.
//
// With PreferLonger, candidates are stably sorted by descending width and
// accepted greedily when none of their positions is already claimed. Without
// it, every candidate is returned in scan order.
func FindMatches(text string, idx Lookuper, opts Options) []Span {
	words := index.Words(text)
	return FindMatchesInWords(words, idx, opts)
}

// FindMatchesInWords is FindMatches over pre-split words.
func FindMatchesInWords(words []string, idx Lookuper, opts Options) []Span {
	if len(words) == 0 || idx == nil || opts.MaxWords < 1 {
		return nil
	}

	maxWords := opts.MaxWords
	if maxWords > len(words) {
		maxWords = len(words)
	}

	var candidates []Span
	for n := maxWords; n >= 1; n-- {
		for start := 0; start+n <= len(words); start++ {
			phrase := strings.Join(words[start:start+n], " ")
			docs := idx.Lookup(phrase)
			if len(docs) == 0 {
				continue
			}
			candidates = append(candidates, Span{
				Start: start,
				End:   start + n,
				Words: n,
				Text:  phrase,
				Docs:  docs,
			})
		}
	}

	if !opts.PreferLonger || len(candidates) < 2 {
		return candidates
	}
	return resolve(candidates, len(words))
}

// resolve keeps the longest non-overlapping candidates. Equal widths keep
// scan order. The result is ordered by acceptance: widest first.
func resolve(candidates []Span, wordCount int) []Span {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Words > candidates[j].Words
	})

	claimed := make([]bool, wordCount)
	accepted := candidates[:0:0]
	for _, c := range candidates {
		if anyClaimed(claimed, c.Start, c.End) {
			continue
		}
		for i := c.Start; i < c.End; i++ {
			claimed[i] = true
		}
		accepted = append(accepted, c)
	}
	return accepted
}

func anyClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// ByPosition sorts spans by start word, for callers that render matches in
// reading order.
func ByPosition(spans []Span) []Span {
	out := make([]Span, len(spans))
	copy(out, spans)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
