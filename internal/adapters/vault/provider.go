// Package vault reads an Obsidian-style vault of markdown notes from disk.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/corey/vaultlink/internal/ports"
	"golang.org/x/sync/errgroup"
)

// readWorkers bounds concurrent file reads.
const readWorkers = 16

// maxFileSize skips notes larger than this.
const maxFileSize = 4 << 20

// skipDirs lists directories never walked (matches the fsnotify watcher).
var skipDirs = map[string]bool{
	".git":       true,
	".obsidian":  true,
	".trash":     true,
	".vaultlink": true,
}

// SkipDir reports whether a directory name is excluded from walks and watches.
func SkipDir(name string) bool { return skipDirs[name] }

// IsNote reports whether path names a markdown note.
func IsNote(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithExclude sets a filter over vault-relative, slash-separated paths.
func WithExclude(fn func(rel string) bool) Option {
	return func(p *Provider) { p.exclude = fn }
}

// Provider implements ports.DocumentProvider over a directory.
type Provider struct {
	root    string
	exclude func(rel string) bool
	logger  *slog.Logger
}

var _ ports.DocumentProvider = (*Provider)(nil)

// New creates a provider rooted at root.
func New(root string, opts ...Option) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", abs)
	}

	p := &Provider{root: abs, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "vault")
	return p, nil
}

// Root returns the absolute vault directory.
func (p *Provider) Root() string { return p.root }

// Rel converts an absolute or root-relative path to the slash-separated
// vault-relative form used as Document.Path.
func (p *Provider) Rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.root, path)
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the vault", path)
	}
	return filepath.ToSlash(rel), nil
}

// Documents walks the vault and reads every note, ordered by path.
// Unreadable files are logged and skipped.
func (p *Provider) Documents(ctx context.Context) ([]*ports.Document, error) {
	var rels []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			p.logger.Warn("walk", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != p.root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsNote(path) {
			return nil
		}
		rel, err := p.Rel(path)
		if err != nil || p.excluded(rel) {
			return nil
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	sort.Strings(rels)

	docs := make([]*ports.Document, len(rels))
	var mu sync.Mutex
	skipped := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readWorkers)
	for i, rel := range rels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := p.read(rel)
			if err != nil {
				p.logger.Warn("skip note", "path", rel, "err", err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := docs[:0]
	for _, d := range docs {
		if d != nil {
			out = append(out, d)
		}
	}
	p.logger.Debug("loaded vault", "notes", len(out), "skipped", skipped)
	return out, nil
}

// Document reads a single note. Paths outside the vault, non-notes, excluded
// paths and missing files report ports.ErrNotFound.
func (p *Provider) Document(ctx context.Context, path string) (*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := p.Rel(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ports.ErrNotFound)
	}
	if !IsNote(rel) || p.excluded(rel) {
		return nil, fmt.Errorf("%s: %w", rel, ports.ErrNotFound)
	}
	for _, part := range strings.Split(rel, "/") {
		if skipDirs[part] {
			return nil, fmt.Errorf("%s: %w", rel, ports.ErrNotFound)
		}
	}
	doc, err := p.read(rel)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", rel, ports.ErrNotFound)
	}
	return doc, err
}

func (p *Provider) excluded(rel string) bool {
	return p.exclude != nil && p.exclude(rel)
}

func (p *Provider) read(rel string) (*ports.Document, error) {
	abs := filepath.Join(p.root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%d bytes exceeds %d byte limit", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return Parse(rel, string(data), info.ModTime()), nil
}
