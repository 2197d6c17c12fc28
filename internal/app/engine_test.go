package app

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/corey/vaultlink/internal/config"
	"github.com/corey/vaultlink/internal/domain/mention"
	"github.com/corey/vaultlink/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProvider is an in-memory ports.DocumentProvider.
type memProvider struct {
	mu   sync.Mutex
	docs map[string]*ports.Document
}

func newMemProvider(docs ...*ports.Document) *memProvider {
	p := &memProvider{docs: make(map[string]*ports.Document)}
	for _, d := range docs {
		p.docs[d.Path] = d
	}
	return p
}

func (p *memProvider) Documents(ctx context.Context) ([]*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*ports.Document, 0, len(p.docs))
	for _, d := range p.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (p *memProvider) Document(_ context.Context, path string) (*ports.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.docs[path]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return d, nil
}

func (p *memProvider) put(d *ports.Document) {
	p.mu.Lock()
	p.docs[d.Path] = d
	p.mu.Unlock()
}

func (p *memProvider) remove(path string) {
	p.mu.Lock()
	delete(p.docs, path)
	p.mu.Unlock()
}

var t0 = time.Unix(1700000000, 0)

func doc(path, title string, aliases []string, lines ...string) *ports.Document {
	return &ports.Document{
		ID:      ports.DocIDFromPath(path),
		Path:    path,
		Title:   title,
		Aliases: aliases,
		ModTime: t0,
		Lines:   lines,
	}
}

func testVault() *memProvider {
	return newMemProvider(
		doc("Biology/Smooth Muscle.md", "Smooth Muscle", nil, "Involuntary muscle."),
		doc("Muscle.md", "Muscle", nil),
		doc("Neuron.md", "Neuron", []string{"nerve cell"}, "A neuron is a cell."),
		doc("Mitochondrion.md", "Mitochondrion", nil, "Powerhouse."),
		doc("Lecture.md", "Lecture", nil,
			"# Week 1",
			"",
			"The Smooth Muscle contracts when a nerve cell fires.",
			"See [[Neuron]] and [[Mitochondrions]].",
			"",
			"- [[Biology/Smooth Muscle]]",
			"- [[Ghost Note]]",
		),
		doc("Lab.md", "Lab", nil, "Mitochondrions again: [[Mitochondrions]]"),
	)
}

func newTestEngine(t *testing.T, p ports.DocumentProvider, opts ...Option) *Engine {
	t.Helper()
	e, err := New(config.Default(), p, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func builtEngine(t *testing.T, opts ...Option) (*Engine, *memProvider) {
	t.Helper()
	p := testVault()
	e := newTestEngine(t, p, opts...)
	_, err := e.BuildIndex(context.Background())
	require.NoError(t, err)
	return e, p
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RequiresProvider(t *testing.T) {
	_, err := New(config.Default(), nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxWords = 0
	_, err := New(cfg, testVault())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_PoolSize(t *testing.T) {
	e := newTestEngine(t, testVault(), WithPoolSize(3))
	assert.Equal(t, 3, e.Stats().PoolSize)

	e = newTestEngine(t, testVault(), WithPoolSize(-2))
	assert.Equal(t, 1, e.Stats().PoolSize)
}

// =============================================================================
// Build, match, similar
// =============================================================================

func TestBuildIndex(t *testing.T) {
	e, _ := builtEngine(t)
	st := e.Stats()
	assert.True(t, st.Built)
	assert.Equal(t, 6, st.Documents)
	assert.Greater(t, st.Terms, 6)
	assert.False(t, st.LastBuild.IsZero())
}

func TestFindMatches_LongestFirst(t *testing.T) {
	e, _ := builtEngine(t)
	spans := e.FindMatches("The Smooth Muscle contracts")
	require.Len(t, spans, 1)
	assert.Equal(t, "Smooth Muscle", spans[0].Text)
	assert.Equal(t, 1, spans[0].Start)
	assert.Equal(t, 3, spans[0].End)
	assert.Equal(t, []ports.DocID{ports.DocIDFromPath("Biology/Smooth Muscle.md")}, spans[0].Docs)

	assert.Equal(t, spans, e.FindMatches("The Smooth Muscle contracts"), "repeat calls are identical")
}

func TestFindMatches_AliasesAndVariants(t *testing.T) {
	e, _ := builtEngine(t)
	refs := e.Lookup("Nerve Cell")
	require.Len(t, refs, 1)
	assert.Equal(t, "Neuron", refs[0].Title)

	refs = e.Lookup("mitochondrions")
	require.Len(t, refs, 1)
	assert.Equal(t, "Mitochondrion", refs[0].Title)
}

func TestExtractContext(t *testing.T) {
	e, _ := builtEngine(t)
	lines := []string{"- parent", "  - child", "other"}
	assert.Equal(t, []string{"- parent", "  - child"}, e.ExtractContext(lines, 1))
	assert.Nil(t, e.ExtractContext(lines, 7))
}

func TestFindSimilar(t *testing.T) {
	e, _ := builtEngine(t)
	id, ok := e.FindSimilar("Mitochondrian")
	require.True(t, ok)
	assert.Equal(t, ports.DocIDFromPath("Mitochondrion.md"), id)

	_, ok = e.FindSimilar("Mitochondrion")
	assert.False(t, ok, "identical titles are not near-duplicates")
	_, ok = e.FindSimilar("Zebra")
	assert.False(t, ok)
}

// =============================================================================
// Refresh
// =============================================================================

func TestRefreshIndex_ChangedAddedRemoved(t *testing.T) {
	e, p := builtEngine(t)

	neuron := doc("Neuron.md", "Neuron", []string{"neurocyte"}, "A neuron.")
	neuron.ModTime = t0.Add(time.Minute)
	p.put(neuron)
	p.put(doc("Axon.md", "Axon", nil))
	p.remove("Muscle.md")

	res, err := e.RefreshIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Reindexed)
	assert.Equal(t, 4, res.Unchanged)
	assert.Equal(t, 1, res.Removed)

	assert.Empty(t, e.Lookup("nerve cell"), "stale alias evicted")
	assert.Len(t, e.Lookup("neurocyte"), 1)
	assert.Len(t, e.Lookup("axon"), 1)
	assert.Empty(t, e.Lookup("muscle"))
	assert.Equal(t, 6, e.Stats().Documents)
}

func TestRefreshIndex_BeforeBuild(t *testing.T) {
	e := newTestEngine(t, testVault())
	res, err := e.RefreshIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, res.Reindexed)
	assert.True(t, e.Stats().Built)
}

func TestRefreshIndex_NoChanges(t *testing.T) {
	e, _ := builtEngine(t)
	res, err := e.RefreshIndex(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, 6, res.Unchanged)
	assert.Zero(t, res.Removed)
}

// =============================================================================
// Mentions
// =============================================================================

func TestScanMentions_OrderedAndSelfFree(t *testing.T) {
	e, _ := builtEngine(t)
	got, err := e.ScanMentions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Lab.md", got[0].SourcePath)
	assert.Equal(t, "Mitochondrions", got[0].Span.Text)

	assert.Equal(t, "Lecture.md", got[1].SourcePath)
	assert.Equal(t, 2, got[1].Line)
	assert.Equal(t, "Smooth Muscle", got[1].Span.Text)
	assert.Equal(t, "Week 1", got[1].Heading)

	assert.Equal(t, "nerve cell", got[2].Span.Text)
	assert.Equal(t, []ports.DocID{ports.DocIDFromPath("Neuron.md")}, got[2].Targets())

	for _, m := range got {
		assert.NotEqual(t, "Neuron.md", m.SourcePath, "a note never mentions itself")
	}
}

func TestScanMentions_PrefilterDoesNotChangeResults(t *testing.T) {
	filtered, _ := builtEngine(t)
	plain, _ := builtEngine(t, WithPrefilter(nil), WithPoolSize(1))

	a, err := filtered.ScanMentions(context.Background())
	require.NoError(t, err)
	b, err := plain.ScanMentions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestScanMentions_Deterministic(t *testing.T) {
	e, _ := builtEngine(t, WithPoolSize(4))
	first, err := e.ScanMentions(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.ScanMentions(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScanMentions_Errors(t *testing.T) {
	e := newTestEngine(t, testVault())
	_, err := e.ScanMentions(context.Background())
	assert.ErrorIs(t, err, ErrNotBuilt)

	_, err = e.BuildIndex(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.ScanMentions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanFile(t *testing.T) {
	e, _ := builtEngine(t)
	got, err := e.ScanFile(context.Background(), "Lecture.md")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = e.ScanFile(context.Background(), "Nope.md")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

// =============================================================================
// Missing links and reference notes
// =============================================================================

func TestMissingLinks(t *testing.T) {
	e, _ := builtEngine(t)
	missing, err := e.MissingLinks(context.Background())
	require.NoError(t, err)
	require.Len(t, missing, 2)

	ghost := missing[0]
	assert.Equal(t, "Ghost Note", ghost.Target)
	assert.Empty(t, ghost.Suggestion)
	require.Len(t, ghost.Sources, 1)
	assert.Equal(t, 6, ghost.Sources[0].Line)
	assert.Equal(t, "Week 1", ghost.Sources[0].Heading)
	assert.Equal(t, []string{"- [[Ghost Note]]"}, ghost.Sources[0].Context)

	mito := missing[1]
	assert.Equal(t, "Mitochondrions", mito.Target)
	assert.Equal(t, "Mitochondrion", mito.Suggestion)
	require.Len(t, mito.Sources, 2)
	assert.Equal(t, "Lab.md", mito.Sources[0].Path)
	assert.Equal(t, "Lecture.md", mito.Sources[1].Path)
}

func TestReferenceNote(t *testing.T) {
	e, _ := builtEngine(t)
	note, err := e.ReferenceNote(context.Background(), "mitochondrions")
	require.NoError(t, err)

	assert.Equal(t, "Mitochondrion", note.SeeAlso)
	require.NotNil(t, note.Form)
	assert.Equal(t, "plural", note.Form.Kind)
	require.Len(t, note.References, 2)
	assert.Equal(t, "Lab", note.References[0].SourceTitle)
	assert.Equal(t, []string{
		"The Smooth Muscle contracts when a nerve cell fires.",
		"See [[Neuron]] and [[Mitochondrions]].",
	}, note.References[1].Context)

	out, err := e.RenderReferenceNote(context.Background(), "Mitochondrions")
	require.NoError(t, err)
	titled, err := e.ReferenceNote(context.Background(), "Mitochondrions")
	require.NoError(t, err)
	assert.Equal(t, mention.RenderReferences(titled), out)
	assert.Contains(t, out, "This appears to be the plural form of \"Mitochondrion\".")
	assert.Contains(t, out, "### From [[Lecture]]")
}

func TestReferenceNote_NotLinked(t *testing.T) {
	e, _ := builtEngine(t)
	_, err := e.ReferenceNote(context.Background(), "Nothing Links Here")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

// =============================================================================
// Incremental updates
// =============================================================================

func TestOnFileChanged_UpdateAndDelete(t *testing.T) {
	e, p := builtEngine(t)
	ctx := context.Background()

	neuron := doc("Neuron.md", "Neuron", []string{"neurocyte"})
	neuron.ModTime = t0.Add(time.Second)
	p.put(neuron)
	require.NoError(t, e.OnFileChanged(ctx, "Neuron.md"))
	assert.Empty(t, e.Lookup("nerve cell"))
	assert.Len(t, e.Lookup("neurocyte"), 1)

	p.remove("Neuron.md")
	require.NoError(t, e.OnFileChanged(ctx, "Neuron.md"))
	assert.Empty(t, e.Lookup("neuron"))
	assert.Equal(t, 5, e.Stats().Documents)

	// Unknown paths are a no-op.
	require.NoError(t, e.OnFileChanged(ctx, "Never.md"))
}

func TestOnFileChanged_NewNoteIsScanned(t *testing.T) {
	e, p := builtEngine(t)
	p.put(doc("Axon.md", "Axon", nil, "Signals leave the Neuron here."))
	require.NoError(t, e.OnFileChanged(context.Background(), "Axon.md"))

	got, err := e.ScanMentions(context.Background())
	require.NoError(t, err)
	var fromAxon int
	for _, m := range got {
		if m.SourcePath == "Axon.md" {
			fromAxon++
		}
	}
	assert.Equal(t, 1, fromAxon)
}

// fakeWatcher records the callback so tests can fire events by hand.
type fakeWatcher struct {
	onChange func(string)
	started  chan struct{}
	stopped  bool
}

func (w *fakeWatcher) Watch(_ string, onChange func(string)) error {
	w.onChange = onChange
	close(w.started)
	return nil
}

func (w *fakeWatcher) Stop() error {
	w.stopped = true
	return nil
}

func TestWatch_AppliesChangesUntilCancelled(t *testing.T) {
	p := testVault()
	e := newTestEngine(t, p)
	w := &fakeWatcher{started: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx, w, "/vault") }()

	select {
	case <-w.started:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never started")
	}
	assert.True(t, e.Stats().Built, "Watch builds the index first")

	p.put(doc("Axon.md", "Axon", nil))
	w.onChange("Axon.md")
	assert.Len(t, e.Lookup("axon"), 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	assert.True(t, w.stopped)
}
