package vectorindex

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/models"
)

// memoryStorage is an in-memory stand-in for the persistent chunk store.
type memoryStorage struct {
	mu     sync.Mutex
	chunks map[string][]models.EmbeddedChunk
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{chunks: make(map[string][]models.EmbeddedChunk)}
}

func (m *memoryStorage) ReplaceDocumentChunks(documentID string, chunks []models.EmbeddedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(chunks) == 0 {
		delete(m.chunks, documentID)
		return nil
	}
	m.chunks[documentID] = append([]models.EmbeddedChunk(nil), chunks...)
	return nil
}

func (m *memoryStorage) DeleteDocumentChunks(documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, documentID)
	return nil
}

func (m *memoryStorage) LoadAll() ([]models.EmbeddedChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.EmbeddedChunk
	for _, chunks := range m.chunks {
		all = append(all, chunks...)
	}
	return all, nil
}

func (m *memoryStorage) CountChunks() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, chunks := range m.chunks {
		n += len(chunks)
	}
	return n, nil
}

func embedded(docID, label string, ordinal int, vector []float32) models.EmbeddedChunk {
	return models.EmbeddedChunk{
		Chunk: models.Chunk{
			DocumentID: docID,
			UnitLabel:  label,
			Ordinal:    ordinal,
			Text:       "text for " + label,
			Confidence: 1.0,
		},
		Vector:  vector,
		ModelID: "gemini-embedding-001@3",
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(newMemoryStorage(), arbor.NewLogger())
	require.NoError(t, err)
	return idx
}

func TestSearchReturnsFewerThanK(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", []models.EmbeddedChunk{
		embedded("doc_a", "page:1", 0, []float32{1, 0, 0}),
		embedded("doc_a", "page:2", 0, []float32{0, 1, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 5, "gemini-embedding-001@3")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "page:1", hits[0].Label)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	for _, h := range hits {
		assert.Equal(t, models.SourceVector, h.Kind)
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5, "gemini-embedding-001@3")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchPartitionsByModelID(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	old := embedded("doc_a", "page:1", 0, []float32{1, 0, 0})
	old.ModelID = "legacy-model@3"
	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", []models.EmbeddedChunk{old}))
	require.NoError(t, idx.ReplaceDocument(ctx, "doc_b", []models.EmbeddedChunk{
		embedded("doc_b", "page:1", 0, []float32{1, 0, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 5, "gemini-embedding-001@3")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc_b", hits[0].ProvenanceID)
}

func TestReplaceDocumentIsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunks := []models.EmbeddedChunk{
		embedded("doc_a", "page:1", 0, []float32{1, 0, 0}),
		embedded("doc_a", "page:1", 1, []float32{0, 1, 0}),
	}
	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", chunks))
	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", chunks))

	assert.Equal(t, 2, idx.Count())
}

func TestReplaceDocumentRemovesStaleChunks(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", []models.EmbeddedChunk{
		embedded("doc_a", "page:1", 0, []float32{1, 0, 0}),
		embedded("doc_a", "page:2", 0, []float32{0, 1, 0}),
		embedded("doc_a", "page:3", 0, []float32{0, 0, 1}),
	}))
	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", []models.EmbeddedChunk{
		embedded("doc_a", "page:1", 0, []float32{1, 0, 0}),
	}))

	assert.Equal(t, 1, idx.Count())

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 5, "gemini-embedding-001@3")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "page:1", hits[0].Label)
}

func TestReplaceDocumentWithNilDeletes(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", []models.EmbeddedChunk{
		embedded("doc_a", "page:1", 0, []float32{1, 0, 0}),
	}))
	require.NoError(t, idx.ReplaceDocument(ctx, "doc_a", nil))

	assert.Equal(t, 0, idx.Count())
}

func TestDeleteUnknownDocumentIsNoOp(t *testing.T) {
	idx := newTestIndex(t)

	assert.NoError(t, idx.Delete(context.Background(), "doc_missing"))
	assert.Equal(t, 0, idx.Count())
}

func TestIndexReloadsFromStorage(t *testing.T) {
	storage := newMemoryStorage()
	logger := arbor.NewLogger()

	idx, err := New(storage, logger)
	require.NoError(t, err)
	require.NoError(t, idx.ReplaceDocument(context.Background(), "doc_a", []models.EmbeddedChunk{
		embedded("doc_a", "page:1", 0, []float32{1, 0, 0}),
	}))

	reloaded, err := New(storage, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Count())
}

func TestCosineSimilarityBounds(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.5, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
