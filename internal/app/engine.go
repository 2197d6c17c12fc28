// Package app wires the vault provider, the term index and the scanners
// together behind a single Engine.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/corey/vaultlink/internal/adapters/ahocorasick"
	"github.com/corey/vaultlink/internal/config"
	"github.com/corey/vaultlink/internal/domain/excerpt"
	"github.com/corey/vaultlink/internal/domain/index"
	"github.com/corey/vaultlink/internal/domain/matcher"
	"github.com/corey/vaultlink/internal/domain/mention"
	"github.com/corey/vaultlink/internal/domain/similarity"
	"github.com/corey/vaultlink/internal/ports"
)

// Engine owns one term index over one document provider.
//
// Index writes (BuildIndex, RefreshIndex, OnFileChanged) take the write lock;
// lookups and scans take the read lock. Scans fan out over an ants pool.
type Engine struct {
	cfg       config.Config
	provider  ports.DocumentProvider
	pool      *ants.Pool
	prefilter ports.PatternMatcher
	similar   similarity.Matcher
	matchOpts matcher.Options
	logger    *slog.Logger

	mu        sync.RWMutex
	idx       *index.TermIndex
	docs      map[ports.DocID]*ports.Document
	built     bool
	lastBuild time.Time
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the worker pool size for mention scans.
// Default is cfg.PoolSize, or runtime.NumCPU() / 2 with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if e.pool != nil {
			e.pool.Release()
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithPrefilter replaces the Aho-Corasick line prefilter. nil disables
// prefiltering.
func WithPrefilter(p ports.PatternMatcher) Option {
	return func(e *Engine) error {
		e.prefilter = p
		return nil
	}
}

// New creates an Engine. The index is empty until BuildIndex.
// Call Release when done to free the worker pool.
func New(cfg config.Config, provider ports.DocumentProvider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, _ := similarity.ParsePolicy(cfg.SimilarityPolicy)

	poolSize := cfg.PoolSize
	if poolSize < 1 {
		poolSize = runtime.NumCPU() / 2
	}
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		provider:  provider,
		pool:      pool,
		prefilter: ahocorasick.New(nil),
		similar:   similarity.Matcher{Threshold: cfg.SimilarityThreshold, Policy: policy},
		matchOpts: matcher.Options{MaxWords: cfg.MaxWords, PreferLonger: cfg.PreferLonger},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}
	e.logger = e.logger.With("component", "engine")
	e.idx = e.newIndex()
	e.docs = make(map[ports.DocID]*ports.Document)
	return e, nil
}

// Release frees the worker pool.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

func (e *Engine) newIndex() *index.TermIndex {
	return index.New(index.Options{
		MinTermLength: e.cfg.MinTermLength,
		CaseSensitive: e.cfg.CaseSensitive,
		Synonyms:      e.cfg.Synonyms,
		Exclude:       e.cfg.Excluded,
	})
}

// BuildStats reports what BuildIndex loaded.
type BuildStats struct {
	Documents int
	Terms     int
	Duration  time.Duration
}

// BuildIndex loads every document and rebuilds the index from scratch.
func (e *Engine) BuildIndex(ctx context.Context) (BuildStats, error) {
	start := time.Now()
	docs, err := e.provider.Documents(ctx)
	if err != nil {
		return BuildStats{}, fmt.Errorf("load documents: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.idx.Build(docs)
	e.docs = make(map[ports.DocID]*ports.Document, len(docs))
	for _, d := range docs {
		if _, ok := e.idx.Doc(d.ID); ok {
			e.docs[d.ID] = d
		}
	}
	e.rebuildPrefilter()
	e.built = true
	e.lastBuild = time.Now()

	stats := BuildStats{Documents: e.idx.DocCount(), Terms: e.idx.Len(), Duration: time.Since(start)}
	e.logger.Info("index built", "documents", stats.Documents, "terms", stats.Terms, "duration", stats.Duration)
	return stats, nil
}

// RefreshResult reports what RefreshIndex changed.
type RefreshResult struct {
	index.RefreshStats
	Removed int // indexed documents the provider no longer returns
}

// RefreshIndex reloads documents and re-registers only new or changed ones.
// Documents that disappeared from the provider are removed from the index.
// Before the first BuildIndex it behaves like BuildIndex.
func (e *Engine) RefreshIndex(ctx context.Context) (RefreshResult, error) {
	e.mu.RLock()
	built := e.built
	e.mu.RUnlock()
	if !built {
		stats, err := e.BuildIndex(ctx)
		return RefreshResult{RefreshStats: index.RefreshStats{Reindexed: stats.Documents}}, err
	}

	docs, err := e.provider.Documents(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load documents: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var res RefreshResult
	res.RefreshStats = e.idx.Refresh(docs)

	present := make(map[ports.DocID]bool, len(docs))
	for _, d := range docs {
		present[d.ID] = true
		if _, ok := e.idx.Doc(d.ID); ok {
			e.docs[d.ID] = d
		}
	}
	for id := range e.docs {
		if !present[id] {
			e.idx.Remove(id)
			delete(e.docs, id)
			res.Removed++
		}
	}
	if res.Changed() || res.Removed > 0 {
		e.rebuildPrefilter()
	}

	e.logger.Info("index refreshed",
		"reindexed", res.Reindexed, "unchanged", res.Unchanged,
		"excluded", res.Excluded, "removed", res.Removed)
	return res, nil
}

// rebuildPrefilter recompiles the prefilter from the current keys.
// Caller holds the write lock.
func (e *Engine) rebuildPrefilter() {
	if e.prefilter != nil {
		e.prefilter.Rebuild(e.idx.Terms())
	}
}

// FindMatches returns the resolved term spans in text.
func (e *Engine) FindMatches(text string) []matcher.Span {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return matcher.FindMatches(text, e.idx, e.matchOpts)
}

// ExtractContext returns the paragraph or list context around lines[i].
func (e *Engine) ExtractContext(lines []string, i int) []string {
	return excerpt.Extract(lines, i)
}

// FindSimilar returns an indexed document whose title is a near-duplicate of
// name (but not equal to it, ignoring case). Candidates are tried in path
// order under the configured policy.
func (e *Engine) FindSimilar(name string) (ports.DocID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ref, ok := e.findSimilarLocked(name)
	return ref.ID, ok
}

func (e *Engine) findSimilarLocked(name string) (index.DocRef, bool) {
	refs := e.idx.Docs()
	titles := make([]string, len(refs))
	for i, r := range refs {
		titles[i] = r.Title
	}
	i, ok := e.similar.Find(name, titles)
	if !ok {
		return index.DocRef{}, false
	}
	return refs[i], true
}

// Doc returns the path and title of an indexed document.
func (e *Engine) Doc(id ports.DocID) (index.DocRef, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.Doc(id)
}

// Lookup returns the indexed documents owning term.
func (e *Engine) Lookup(term string) []index.DocRef {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []index.DocRef
	for _, id := range e.idx.Lookup(term) {
		if ref, ok := e.idx.Doc(id); ok {
			out = append(out, ref)
		}
	}
	return out
}

// TermsOf returns the index keys an indexed document contributed.
func (e *Engine) TermsOf(id ports.DocID) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.TermsOf(id)
}

// Stats is a point-in-time summary of the engine.
type Stats struct {
	Built     bool
	Documents int
	Terms     int
	PoolSize  int
	LastBuild time.Time
}

// Stats returns current counts.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Built:     e.built,
		Documents: e.idx.DocCount(),
		Terms:     e.idx.Len(),
		PoolSize:  e.pool.Cap(),
		LastBuild: e.lastBuild,
	}
}

// scanner returns a mention scanner over the current index.
// Caller holds the read lock for as long as the scanner is used.
func (e *Engine) scanner() *mention.Scanner {
	return &mention.Scanner{Index: e.idx, Options: e.matchOpts, Prefilter: e.prefilter}
}

// sortedDocs returns the loaded documents ordered by path.
// Caller holds the read lock.
func (e *Engine) sortedDocs() []*ports.Document {
	out := make([]*ports.Document, 0, len(e.docs))
	for _, d := range e.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
