// Package bbolt implements ports.DocumentStore using bbolt (embedded B+ tree).
// Each vault gets its own top-level bucket keyed by its root path. Within it,
// a "docs" sub-bucket holds one binary-encoded record per note keyed by DocID,
// and a "meta" sub-bucket records when the snapshot was taken. Saves replace
// the vault's bucket in a single transaction, so a crash mid-write leaves the
// previous snapshot intact.
package bbolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/corey/vaultlink/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketDocs = []byte("docs")
	bucketMeta = []byte("meta")
	keySavedAt = []byte("saved_at")
)

// Store implements ports.DocumentStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.DocumentStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func docKey(id ports.DocID) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// SaveDocuments replaces the snapshot for a vault with docs.
func (s *Store) SaveDocuments(vault string, docs []*ports.Document) error {
	encoded := make(map[ports.DocID][]byte, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		data, err := encodeDocument(doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", doc.Path, err)
		}
		encoded[doc.ID] = data
	}
	savedAt := make([]byte, 8)
	binary.LittleEndian.PutUint64(savedAt, uint64(time.Now().UnixNano()))

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(vault)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		vb, err := tx.CreateBucket([]byte(vault))
		if err != nil {
			return err
		}
		b, err := vb.CreateBucket(bucketDocs)
		if err != nil {
			return err
		}
		for id, data := range encoded {
			if err := b.Put(docKey(id), data); err != nil {
				return err
			}
		}
		mb, err := vb.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		return mb.Put(keySavedAt, savedAt)
	})
}

// LoadDocuments returns every document in a vault's snapshot, ordered by path.
// Returns nil, nil if the vault has no snapshot.
func (s *Store) LoadDocuments(vault string) ([]*ports.Document, error) {
	var docs []*ports.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		b := docsBucket(tx, vault)
		if b == nil {
			return nil
		}
		// Decoding copies out of the mmap, so values stay valid after the tx.
		return b.ForEach(func(k, v []byte) error {
			doc, err := decodeDocument(v)
			if err != nil {
				return fmt.Errorf("decode %x: %w", k, err)
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// LoadDocument returns one document from a vault's snapshot, or
// ports.ErrNotFound.
func (s *Store) LoadDocument(vault string, id ports.DocID) (*ports.Document, error) {
	var doc *ports.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		b := docsBucket(tx, vault)
		if b == nil {
			return nil
		}
		v := b.Get(docKey(id))
		if v == nil {
			return nil
		}
		var err error
		doc, err = decodeDocument(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ports.ErrNotFound
	}
	return doc, nil
}

// SavedAt returns when the vault's snapshot was written. ok is false when
// there is none.
func (s *Store) SavedAt(vault string) (t time.Time, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		vb := tx.Bucket([]byte(vault))
		if vb == nil {
			return nil
		}
		mb := vb.Bucket(bucketMeta)
		if mb == nil {
			return nil
		}
		if v := mb.Get(keySavedAt); len(v) == 8 {
			t = time.Unix(0, int64(binary.LittleEndian.Uint64(v)))
			ok = true
		}
		return nil
	})
	return t, ok, err
}

// DeleteVault removes a vault's snapshot.
// Idempotent: deleting a nonexistent vault is not an error.
func (s *Store) DeleteVault(vault string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(vault)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		} else {
			return err
		}
	})
}

func docsBucket(tx *bolt.Tx, vault string) *bolt.Bucket {
	vb := tx.Bucket([]byte(vault))
	if vb == nil {
		return nil
	}
	return vb.Bucket(bucketDocs)
}
