package ports

// DocumentStore persists a snapshot of a vault's documents to durable storage.
// The backing store (bbolt) is vault-scoped: each vault name gets its own
// namespace. Concurrent reads are safe; writes are serialized by the adapter.
//
// Only documents are stored. The term index is always rebuilt in memory from
// whatever a provider returns.
type DocumentStore interface {
	// SaveDocuments replaces the snapshot for a vault with docs.
	// Must be transactional: a crash mid-write leaves the prior snapshot intact.
	SaveDocuments(vault string, docs []*Document) error

	// LoadDocuments returns the snapshot for a vault ordered by Path.
	// Returns nil, nil if no snapshot exists.
	LoadDocuments(vault string) ([]*Document, error)

	// DeleteVault removes the snapshot for a vault.
	// Idempotent: deleting a nonexistent vault is not an error.
	DeleteVault(vault string) error
}
