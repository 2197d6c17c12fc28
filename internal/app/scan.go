package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/corey/vaultlink/internal/domain/excerpt"
	"github.com/corey/vaultlink/internal/domain/mention"
	"github.com/corey/vaultlink/internal/domain/morph"
	"github.com/corey/vaultlink/internal/domain/wikilink"
	"github.com/corey/vaultlink/internal/ports"
)

// ScanMentions finds every mention of an indexed term across all loaded
// documents. One task per document is submitted to the worker pool; results
// are ordered by source path, then line, then word position.
//
// Cancelling ctx stops further submissions; tasks already running finish and
// ctx.Err() is returned.
func (e *Engine) ScanMentions(ctx context.Context) ([]mention.Mention, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return nil, ErrNotBuilt
	}

	docs := e.sortedDocs()
	sc := e.scanner()
	results := make([][]mention.Mention, len(docs))

	var wg sync.WaitGroup
	var submitErr error
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = sc.ScanDocument(doc)
		})
		if err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit scan for %s: %w", doc.Path, err)
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return nil, submitErr
	}

	var out []mention.Mention
	for _, r := range results {
		out = append(out, r...)
	}
	e.logger.Debug("scanned mentions", "documents", len(docs), "mentions", len(out))
	return out, nil
}

// ScanFile reads one document fresh from the provider and returns its
// mentions. The document need not be indexed itself.
func (e *Engine) ScanFile(ctx context.Context, path string) ([]mention.Mention, error) {
	doc, err := e.provider.Document(ctx, path)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return nil, ErrNotBuilt
	}
	return e.scanner().ScanDocument(doc), nil
}

// LinkSource is one place a wikilink appears.
type LinkSource struct {
	Path    string
	Title   string
	Line    int
	Heading string
	Context []string
}

// MissingLink is a wikilink target that no document answers to.
type MissingLink struct {
	Target     string       // as first written
	Sources    []LinkSource // in path then line order
	Suggestion string       // similar existing title, "" if none
}

// MissingLinks returns every wikilink target that resolves to no document,
// ordered case-insensitively by target. A target resolves when it equals a
// document's title or its path without the .md extension, ignoring case.
func (e *Engine) MissingLinks(ctx context.Context) ([]MissingLink, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return nil, ErrNotBuilt
	}

	existing := e.resolvableLocked()
	byKey := make(map[string]*MissingLink)
	for _, doc := range e.sortedDocs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, src := range linkSources(doc) {
			key := strings.ToLower(src.target)
			if existing[key] {
				continue
			}
			ml, ok := byKey[key]
			if !ok {
				ml = &MissingLink{Target: src.target}
				byKey[key] = ml
			}
			ml.Sources = append(ml.Sources, src.LinkSource)
		}
	}

	out := make([]MissingLink, 0, len(byKey))
	for _, ml := range byKey {
		if ref, ok := e.findSimilarLocked(ml.Target); ok {
			ml.Suggestion = ref.Title
		}
		out = append(out, *ml)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Target) < strings.ToLower(out[j].Target)
	})
	return out, nil
}

// ReferenceNote assembles the reference note for title from every wikilink
// pointing at it. Plural titles carry their singular form; a near-duplicate
// existing title becomes the "See also" entry. It returns ports.ErrNotFound
// when nothing links to title.
func (e *Engine) ReferenceNote(ctx context.Context, title string) (mention.RefNote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.built {
		return mention.RefNote{}, ErrNotBuilt
	}

	note := mention.RefNote{Title: title}
	key := strings.ToLower(strings.TrimSpace(title))
	for _, doc := range e.sortedDocs() {
		if err := ctx.Err(); err != nil {
			return mention.RefNote{}, err
		}
		for _, src := range linkSources(doc) {
			if strings.ToLower(src.target) != key {
				continue
			}
			note.References = append(note.References, mention.Reference{
				SourceTitle: src.Title,
				Context:     src.Context,
			})
		}
	}
	if len(note.References) == 0 {
		return mention.RefNote{}, fmt.Errorf("no links to %q: %w", title, ports.ErrNotFound)
	}

	if form, ok := morph.Describe(title); ok {
		note.Form = &form
	}
	if ref, ok := e.findSimilarLocked(title); ok {
		note.SeeAlso = ref.Title
	}
	return note, nil
}

// RenderReferenceNote is ReferenceNote rendered to markdown.
func (e *Engine) RenderReferenceNote(ctx context.Context, title string) (string, error) {
	note, err := e.ReferenceNote(ctx, title)
	if err != nil {
		return "", err
	}
	return mention.RenderReferences(note), nil
}

type linkSource struct {
	LinkSource
	target string
}

// linkSources lists the wikilinks in a document body, skipping frontmatter
// and fenced code, each bound to its heading and context.
func linkSources(doc *ports.Document) []linkSource {
	start := excerpt.BodyStart(doc.Lines)
	fenced := excerpt.FenceMask(doc.Lines)
	var out []linkSource
	for _, l := range wikilink.Extract(doc.Lines[start:]) {
		line := l.Line + start
		if fenced[line] {
			continue
		}
		out = append(out, linkSource{
			target: l.Target,
			LinkSource: LinkSource{
				Path:    doc.Path,
				Title:   doc.Title,
				Line:    line,
				Heading: excerpt.NearestHeading(doc.Lines, line),
				Context: excerpt.Extract(doc.Lines, line),
			},
		})
	}
	return out
}

// resolvableLocked returns the lower-cased titles and extensionless paths of
// every indexed document. Caller holds the read lock.
func (e *Engine) resolvableLocked() map[string]bool {
	refs := e.idx.Docs()
	out := make(map[string]bool, 2*len(refs))
	for _, r := range refs {
		out[strings.ToLower(r.Title)] = true
		out[strings.ToLower(strings.TrimSuffix(r.Path, ".md"))] = true
	}
	return out
}
