// Package index maps normalized term strings (titles, aliases, inflected
// variants, synonym abbreviations) to the documents that own them.
//
// A TermIndex is an explicitly owned value. It does no locking of its own:
// callers that share one across goroutines serialize Build/Refresh/Remove
// against reads (see app.Engine).
package index

import (
	"sort"
	"strings"
	"time"

	"github.com/corey/vaultlink/internal/domain/morph"
	"github.com/corey/vaultlink/internal/ports"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTermLength is used when Options.MinTermLength is not positive.
const DefaultMinTermLength = 1

// Options controls what a TermIndex registers and how keys are normalized.
type Options struct {
	MinTermLength int               // terms shorter than this (in runes) are never registered
	CaseSensitive bool              // false = keys are lower-cased
	Synonyms      map[string]string // abbreviation -> expansion
	Exclude       func(path string) bool
}

// DocRef identifies an indexed document by handle, path and title.
type DocRef struct {
	ID    ports.DocID
	Path  string
	Title string
}

// RefreshStats reports what a Refresh call did.
type RefreshStats struct {
	Reindexed int // new or changed documents re-registered
	Unchanged int // timestamp matched, skipped
	Excluded  int // rejected by Options.Exclude
}

// Changed reports whether the refresh altered the term set.
func (s RefreshStats) Changed() bool { return s.Reindexed > 0 }

// TermIndex is the term -> documents mapping plus the bookkeeping needed for
// incremental refresh.
type TermIndex struct {
	opts Options

	terms       map[string]map[ports.DocID]struct{} // key -> owners
	contributed map[ports.DocID]map[string]struct{} // owner -> keys it registered
	modTimes    map[ports.DocID]time.Time           // timestamp at last (re)index
	docs        map[ports.DocID]DocRef

	// synonyms keyed by lower-cased expansion, so registration is a single
	// map probe per title.
	synonyms map[string][]string
}

// New creates an empty TermIndex.
func New(opts Options) *TermIndex {
	if opts.MinTermLength <= 0 {
		opts.MinTermLength = DefaultMinTermLength
	}
	syn := make(map[string][]string, len(opts.Synonyms))
	for abbr, expansion := range opts.Synonyms {
		k := strings.ToLower(collapseSpace(expansion))
		syn[k] = append(syn[k], abbr)
	}
	for k := range syn {
		sort.Strings(syn[k])
	}
	ti := &TermIndex{opts: opts, synonyms: syn}
	ti.reset()
	return ti
}

func (ti *TermIndex) reset() {
	ti.terms = make(map[string]map[ports.DocID]struct{})
	ti.contributed = make(map[ports.DocID]map[string]struct{})
	ti.modTimes = make(map[ports.DocID]time.Time)
	ti.docs = make(map[ports.DocID]DocRef)
}

// Build clears all state and registers every non-excluded document.
func (ti *TermIndex) Build(docs []*ports.Document) {
	ti.reset()
	for _, doc := range docs {
		if doc == nil || ti.excluded(doc) {
			continue
		}
		ti.register(doc)
	}
}

// Refresh re-registers each non-excluded document whose modification time is
// unknown or differs from the one recorded at its last (re)index.
//
// Keys the document contributed previously are evicted first, so a renamed
// title or a dropped alias no longer resolves to it. Documents absent from
// docs are left untouched; use Remove for deletions.
func (ti *TermIndex) Refresh(docs []*ports.Document) RefreshStats {
	var stats RefreshStats
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if ti.excluded(doc) {
			stats.Excluded++
			continue
		}
		if stored, ok := ti.modTimes[doc.ID]; ok && stored.Equal(doc.ModTime) {
			stats.Unchanged++
			continue
		}
		ti.evict(doc.ID)
		ti.register(doc)
		stats.Reindexed++
	}
	return stats
}

// Remove evicts every key a document contributed and forgets its timestamp.
// Removing an unknown document is a no-op.
func (ti *TermIndex) Remove(id ports.DocID) {
	ti.evict(id)
	delete(ti.modTimes, id)
	delete(ti.docs, id)
}

// Lookup returns the documents owning term, ascending by ID, or nil.
func (ti *TermIndex) Lookup(term string) []ports.DocID {
	owners := ti.terms[ti.Normalize(term)]
	if len(owners) == 0 {
		return nil
	}
	out := make([]ports.DocID, 0, len(owners))
	for id := range owners {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Normalize maps a raw term to its index key: NFC composed, whitespace
// collapsed, and lower-cased unless the index is case-sensitive.
func (ti *TermIndex) Normalize(term string) string {
	k := collapseSpace(norm.NFC.String(term))
	if !ti.opts.CaseSensitive {
		k = strings.ToLower(k)
	}
	return k
}

// Terms returns every registered key, sorted.
func (ti *TermIndex) Terms() []string {
	out := make([]string, 0, len(ti.terms))
	for k := range ti.terms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TermsOf returns the keys a document contributed, sorted.
func (ti *TermIndex) TermsOf(id ports.DocID) []string {
	set := ti.contributed[id]
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Doc returns the path and title recorded for an indexed document.
func (ti *TermIndex) Doc(id ports.DocID) (DocRef, bool) {
	ref, ok := ti.docs[id]
	return ref, ok
}

// Docs returns every indexed document ordered by path.
func (ti *TermIndex) Docs() []DocRef {
	out := make([]DocRef, 0, len(ti.docs))
	for _, ref := range ti.docs {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ModTime returns the timestamp recorded at a document's last (re)index.
func (ti *TermIndex) ModTime(id ports.DocID) (time.Time, bool) {
	t, ok := ti.modTimes[id]
	return t, ok
}

// Len returns the number of distinct keys.
func (ti *TermIndex) Len() int { return len(ti.terms) }

// DocCount returns the number of indexed documents.
func (ti *TermIndex) DocCount() int { return len(ti.docs) }

func (ti *TermIndex) excluded(doc *ports.Document) bool {
	return ti.opts.Exclude != nil && ti.opts.Exclude(doc.Path)
}

// register adds title, aliases, title variants and matching synonym
// abbreviations for doc, then records its timestamp. This is the only place
// modTimes is written for a document.
func (ti *TermIndex) register(doc *ports.Document) {
	ti.contributed[doc.ID] = make(map[string]struct{})
	ti.docs[doc.ID] = DocRef{ID: doc.ID, Path: doc.Path, Title: doc.Title}

	ti.add(doc.ID, doc.Title)
	for _, alias := range doc.Aliases {
		ti.add(doc.ID, alias)
	}
	for _, v := range morph.Variants(collapseSpace(doc.Title)) {
		ti.add(doc.ID, v)
	}
	for _, abbr := range ti.synonyms[strings.ToLower(collapseSpace(doc.Title))] {
		ti.add(doc.ID, abbr)
	}

	ti.modTimes[doc.ID] = doc.ModTime
}

func (ti *TermIndex) add(id ports.DocID, term string) {
	k := ti.Normalize(term)
	if k == "" || runeLen(k) < ti.opts.MinTermLength {
		return
	}
	owners, ok := ti.terms[k]
	if !ok {
		owners = make(map[ports.DocID]struct{}, 1)
		ti.terms[k] = owners
	}
	owners[id] = struct{}{}
	ti.contributed[id][k] = struct{}{}
}

// evict removes id from every key it contributed, deleting keys left empty.
func (ti *TermIndex) evict(id ports.DocID) {
	for k := range ti.contributed[id] {
		owners := ti.terms[k]
		delete(owners, id)
		if len(owners) == 0 {
			delete(ti.terms, k)
		}
	}
	delete(ti.contributed, id)
}
