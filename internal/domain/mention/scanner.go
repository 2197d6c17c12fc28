// Package mention binds term matches in a document to their source line,
// nearest heading and surrounding context.
package mention

import (
	"sort"

	"github.com/corey/vaultlink/internal/domain/excerpt"
	"github.com/corey/vaultlink/internal/domain/matcher"
	"github.com/corey/vaultlink/internal/ports"
)

// Index is what the scanner needs from a term index.
type Index interface {
	matcher.Lookuper
	Normalize(term string) string
}

// Mention is a match bound to where it was found.
type Mention struct {
	Source      ports.DocID
	SourcePath  string
	SourceTitle string
	Line        int // index into the source document's Lines
	Span        matcher.Span
	Heading     string   // nearest heading at or above Line; "" if none
	Context     []string // paragraph or list context, original text
}

// Targets returns the documents the mention may refer to.
func (m Mention) Targets() []ports.DocID { return m.Span.Docs }

// Scanner finds mentions of indexed terms in documents.
//
// Prefilter is optional. When set it must have been rebuilt from the index's
// current keys; a line that contains none of them as a substring (after
// normalization) is skipped without a window scan.
type Scanner struct {
	Index     Index
	Options   matcher.Options
	Prefilter ports.PatternMatcher
}

// ScanDocument returns every mention in doc, in line order then word order.
//
// Frontmatter, heading lines and fenced code blocks are not scanned.
// Candidate documents equal to doc itself are dropped, and a span left with
// no candidates is dropped with them.
func (s *Scanner) ScanDocument(doc *ports.Document) []Mention {
	if doc == nil || s.Index == nil || len(doc.Lines) == 0 {
		return nil
	}
	fenced := excerpt.FenceMask(doc.Lines)

	var out []Mention
	for i := excerpt.BodyStart(doc.Lines); i < len(doc.Lines); i++ {
		line := doc.Lines[i]
		if fenced[i] || excerpt.IsHeading(line) {
			continue
		}
		if s.Prefilter != nil && s.Prefilter.Match(s.Index.Normalize(line)) == nil {
			continue
		}

		spans := matcher.ByPosition(matcher.FindMatches(line, s.Index, s.Options))
		var context []string
		var heading string
		for _, span := range spans {
			span.Docs = without(span.Docs, doc.ID)
			if len(span.Docs) == 0 {
				continue
			}
			if context == nil {
				context = excerpt.Extract(doc.Lines, i)
				heading = excerpt.NearestHeading(doc.Lines, i)
			}
			out = append(out, Mention{
				Source:      doc.ID,
				SourcePath:  doc.Path,
				SourceTitle: doc.Title,
				Line:        i,
				Span:        span,
				Heading:     heading,
				Context:     context,
			})
		}
	}
	return out
}

// GroupByTarget indexes mentions by every candidate document they name.
// Each group keeps the input order.
func GroupByTarget(mentions []Mention) map[ports.DocID][]Mention {
	groups := make(map[ports.DocID][]Mention)
	for _, m := range mentions {
		for _, id := range m.Span.Docs {
			groups[id] = append(groups[id], m)
		}
	}
	return groups
}

// Sort orders mentions by source path, line, then start word.
func Sort(mentions []Mention) {
	sort.SliceStable(mentions, func(i, j int) bool {
		a, b := mentions[i], mentions[j]
		if a.SourcePath != b.SourcePath {
			return a.SourcePath < b.SourcePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Span.Start < b.Span.Start
	})
}

func without(ids []ports.DocID, drop ports.DocID) []ports.DocID {
	for i, id := range ids {
		if id != drop {
			continue
		}
		out := make([]ports.DocID, 0, len(ids)-1)
		out = append(out, ids[:i]...)
		return append(out, ids[i+1:]...)
	}
	return ids
}
