// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these types, never on concrete implementations.
package ports

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocID is an opaque document handle. It is derived from the document's
// vault-relative path, so the same note keeps the same ID across scans.
type DocID uint64

// DocIDFromPath generates a deterministic DocID from a vault-relative path
// using BLAKE2b-64.
func DocIDFromPath(path string) DocID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(path))
	sum := h.Sum(nil)
	return DocID(binary.LittleEndian.Uint64(sum))
}

// Document is a single note in the vault, fully materialized.
// Owned by the provider; the domain never mutates it.
type Document struct {
	ID      DocID
	Path    string    // vault-relative, slash separated
	Title   string    // base name without extension
	Aliases []string  // from frontmatter; empty when absent
	ModTime time.Time // last modification, drives incremental refresh
	Lines   []string  // body text split on newlines
}

// DocumentProvider enumerates and reads vault documents. Implementations
// apply their own exclusion rules (extensions, paths) before returning.
//
// Read failures on individual documents are the provider's concern: a
// provider may skip an unreadable note, but must not return a partially
// read one.
type DocumentProvider interface {
	// Documents returns every non-excluded document in a stable order
	// (ascending by Path).
	Documents(ctx context.Context) ([]*Document, error)

	// Document reads a single document by vault-relative path.
	// Returns ErrNotFound if it does not exist or is excluded.
	Document(ctx context.Context, path string) (*Document, error)
}
