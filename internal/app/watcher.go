package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/corey/vaultlink/internal/ports"
)

// relPather is implemented by providers that can map watcher paths (absolute)
// to the vault-relative paths documents are keyed by.
type relPather interface {
	Rel(path string) (string, error)
}

// OnFileChanged updates the index in place for one created, modified,
// renamed or deleted note. A path the provider no longer serves is removed
// from the index.
func (e *Engine) OnFileChanged(ctx context.Context, path string) error {
	doc, err := e.provider.Document(ctx, path)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return e.removePath(path)
	case err != nil:
		return fmt.Errorf("reload %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stats := e.idx.Refresh([]*ports.Document{doc})
	if _, ok := e.idx.Doc(doc.ID); ok {
		e.docs[doc.ID] = doc
	}
	if stats.Changed() {
		e.rebuildPrefilter()
		e.logger.Debug("reindexed", "path", doc.Path, "terms", len(e.idx.TermsOf(doc.ID)))
	}
	return nil
}

func (e *Engine) removePath(path string) error {
	rel := filepath.ToSlash(path)
	if rp, ok := e.provider.(relPather); ok {
		r, err := rp.Rel(path)
		if err != nil {
			return nil // outside the vault; nothing indexed there
		}
		rel = r
	}
	id := ports.DocIDFromPath(rel)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.idx.Doc(id); !ok {
		return nil
	}
	e.idx.Remove(id)
	delete(e.docs, id)
	e.rebuildPrefilter()
	e.logger.Debug("removed", "path", rel)
	return nil
}

// Watch keeps the index current while ctx is live: every change the watcher
// reports under root goes through OnFileChanged. It builds the index first if
// needed, blocks until ctx is done, then stops the watcher.
func (e *Engine) Watch(ctx context.Context, w ports.Watcher, root string) error {
	if !e.Stats().Built {
		if _, err := e.BuildIndex(ctx); err != nil {
			return err
		}
	}

	err := w.Watch(root, func(path string) {
		if err := e.OnFileChanged(ctx, path); err != nil && ctx.Err() == nil {
			e.logger.Warn("file change", "path", path, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	e.logger.Info("watching", "root", root)

	<-ctx.Done()
	if err := w.Stop(); err != nil {
		return fmt.Errorf("stop watcher: %w", err)
	}
	return nil
}
