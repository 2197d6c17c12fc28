package bbolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/vaultlink/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Snapshot store: save/load documents, crash recovery, vault scoping
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func makeDoc(path, title string, aliases []string, lines ...string) *ports.Document {
	return &ports.Document{
		ID:      ports.DocIDFromPath(path),
		Path:    path,
		Title:   title,
		Aliases: aliases,
		ModTime: time.Unix(1700000000, 123456789),
		Lines:   lines,
	}
}

func makeTestDocs() []*ports.Document {
	return []*ports.Document{
		makeDoc("Neuron.md", "Neuron", []string{"nerve cell", "neurone"}, "---", "aliases: [nerve cell]", "---", "A cell."),
		makeDoc("Biology/Smooth Muscle.md", "Smooth Muscle", nil, "Involuntary.", "", "- lines organs"),
		makeDoc("Empty.md", "Empty", nil),
	}
}

func assertSameDoc(t *testing.T, want, got *ports.Document) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Aliases, got.Aliases)
	assert.True(t, want.ModTime.Equal(got.ModTime), "modtime %v != %v", want.ModTime, got.ModTime)
	assert.Equal(t, len(want.Lines), len(got.Lines))
	for i := range want.Lines {
		assert.Equal(t, want.Lines[i], got.Lines[i])
	}
}

func TestStore_SaveLoadDocuments_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	docs := makeTestDocs()
	require.NoError(t, store.SaveDocuments("/vault", docs))

	loaded, err := store.LoadDocuments("/vault")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	// ordered by path
	assertSameDoc(t, docs[1], loaded[0])
	assertSameDoc(t, docs[2], loaded[1])
	assertSameDoc(t, docs[0], loaded[2])
}

func TestStore_SaveReplacesSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDocuments("/vault", makeTestDocs()))
	require.NoError(t, store.SaveDocuments("/vault", []*ports.Document{makeDoc("Only.md", "Only", nil, "x")}))

	loaded, err := store.LoadDocuments("/vault")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Only", loaded[0].Title)
}

func TestStore_LoadDocument(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDocuments("/vault", makeTestDocs()))

	doc, err := store.LoadDocument("/vault", ports.DocIDFromPath("Neuron.md"))
	require.NoError(t, err)
	assert.Equal(t, "Neuron", doc.Title)

	_, err = store.LoadDocument("/vault", ports.DocIDFromPath("Missing.md"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = store.LoadDocument("/other", ports.DocIDFromPath("Neuron.md"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestStore_SavedAt(t *testing.T) {
	store, _ := newTestStore(t)
	_, ok, err := store.SavedAt("/vault")
	require.NoError(t, err)
	assert.False(t, ok)

	before := time.Now()
	require.NoError(t, store.SaveDocuments("/vault", makeTestDocs()))
	at, ok, err := store.SavedAt("/vault")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, at.Before(before.Add(-time.Second)))
}

func TestStore_CrashRecovery(t *testing.T) {
	// Committed transactions survive close and reopen.
	dir := t.TempDir()
	path := filepath.Join(dir, "crash.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveDocuments("/vault", makeTestDocs()))
	require.NoError(t, store.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	loaded, err := store2.LoadDocuments("/vault")
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestStore_VaultScoped(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDocuments("/a", makeTestDocs()))
	require.NoError(t, store.SaveDocuments("/b", []*ports.Document{makeDoc("B.md", "B", nil)}))

	a, err := store.LoadDocuments("/a")
	require.NoError(t, err)
	assert.Len(t, a, 3)

	b, err := store.LoadDocuments("/b")
	require.NoError(t, err)
	assert.Len(t, b, 1)

	// Nonexistent vault: nil, nil
	c, err := store.LoadDocuments("/c")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_DeleteVault(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDocuments("/a", makeTestDocs()))
	require.NoError(t, store.SaveDocuments("/b", makeTestDocs()))

	require.NoError(t, store.DeleteVault("/a"))

	a, err := store.LoadDocuments("/a")
	require.NoError(t, err)
	assert.Nil(t, a)

	b, err := store.LoadDocuments("/b")
	require.NoError(t, err)
	assert.Len(t, b, 3)

	// Delete nonexistent: idempotent
	assert.NoError(t, store.DeleteVault("/c"))
}

func TestStore_ConcurrentReads(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDocuments("/vault", makeTestDocs()))

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs, err := store.LoadDocuments("/vault")
			if err != nil {
				errs <- err
				return
			}
			if len(docs) != 3 {
				errs <- fmt.Errorf("expected 3 docs, got %d", len(docs))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read error: %v", err)
	}
}

// =============================================================================
// Snapshot provider
// =============================================================================

func TestSnapshot_Provider(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	snap := NewSnapshot(store, "/vault")
	_, err := snap.Documents(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, store.SaveDocuments("/vault", makeTestDocs()))
	docs, err := snap.Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	doc, err := snap.Document(ctx, "Biology/Smooth Muscle.md")
	require.NoError(t, err)
	assert.Equal(t, "Smooth Muscle", doc.Title)

	_, err = snap.Document(ctx, "Gone.md")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSnapshot_EmptyVaultIsNotMissing(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveDocuments("/vault", nil))

	docs, err := NewSnapshot(store, "/vault").Documents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// =============================================================================
// Record encoding
// =============================================================================

func TestDecodeDocument_Corrupt(t *testing.T) {
	data, err := encodeDocument(makeTestDocs()[0])
	require.NoError(t, err)

	for _, cut := range []int{0, 1, 9, 20, len(data) - 1} {
		_, err := decodeDocument(data[:cut])
		assert.Error(t, err, "truncated at %d", cut)
	}

	_, err = decodeDocument(append(append([]byte{}, data...), 0))
	assert.Error(t, err, "trailing byte")

	bad := append([]byte{}, data...)
	bad[0] = 9
	_, err = decodeDocument(bad)
	assert.ErrorContains(t, err, "version")
}

// =============================================================================
// Lock contention: the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another handle holds the bbolt exclusive lock, a second open
	// times out in ~1 second instead of hanging.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait ~1s for the configured timeout")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.SaveDocuments("/vault", makeTestDocs()))
	store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.NoError(t, err, "open after close should succeed")
	require.NotNil(t, store2)
	defer store2.Close()
	assert.Less(t, elapsed, 500*time.Millisecond, "should open instantly after lock released")

	docs, err := store2.LoadDocuments("/vault")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}
