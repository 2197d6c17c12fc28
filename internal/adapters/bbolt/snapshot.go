package bbolt

import (
	"context"
	"fmt"

	"github.com/corey/vaultlink/internal/ports"
)

// Snapshot serves a vault's saved documents as a ports.DocumentProvider, so
// the engine can run against a frozen copy of a vault.
type Snapshot struct {
	store *Store
	vault string
}

var _ ports.DocumentProvider = (*Snapshot)(nil)

// NewSnapshot returns a provider over the snapshot saved for vault.
func NewSnapshot(store *Store, vault string) *Snapshot {
	return &Snapshot{store: store, vault: vault}
}

// Documents returns every saved document. A vault without a snapshot
// reports ports.ErrNotFound.
func (s *Snapshot) Documents(ctx context.Context) ([]*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, ok, err := s.store.SavedAt(s.vault)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("snapshot for %s: %w", s.vault, ports.ErrNotFound)
	}
	return s.store.LoadDocuments(s.vault)
}

// Document returns the saved document at a vault-relative path.
func (s *Snapshot) Document(ctx context.Context, path string) (*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.store.LoadDocument(s.vault, ports.DocIDFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
