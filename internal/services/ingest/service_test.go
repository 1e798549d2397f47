package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/ternarybob/responsum/internal/services/chunker"
)

type fakeExtractor struct {
	units []models.ExtractedUnit
	err   error
}

func (f *fakeExtractor) Formats() []string { return []string{"txt"} }

func (f *fakeExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	return f.units, f.err
}

type fakeRegistry struct {
	extractor interfaces.Extractor
}

func (f *fakeRegistry) Resolve(format string) (interfaces.Extractor, error) {
	if format != "txt" {
		return nil, models.ErrUnsupportedFormat
	}
	return f.extractor, nil
}

func (f *fakeRegistry) Formats() []string { return []string{"txt"} }

type fakeEmbeddings struct {
	modelID string
	err     error
	calls   int
}

func (f *fakeEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbeddings) ModelID() string { return f.modelID }

func (f *fakeEmbeddings) Dimension() int { return 3 }

type replaceCall struct {
	documentID string
	chunks     []models.EmbeddedChunk
}

type fakeIndex struct {
	mu       sync.Mutex
	replaces []replaceCall
	deletes  []string
}

func (f *fakeIndex) ReplaceDocument(ctx context.Context, documentID string, chunks []models.EmbeddedChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaces = append(f.replaces, replaceCall{documentID: documentID, chunks: chunks})
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query []float32, k int, modelID string) ([]models.RetrievalHit, error) {
	return nil, nil
}

func (f *fakeIndex) Delete(ctx context.Context, documentID string) error {
	f.deletes = append(f.deletes, documentID)
	return nil
}

func (f *fakeIndex) Count() int { return 0 }

func (f *fakeIndex) lastReplace() replaceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replaces[len(f.replaces)-1]
}

type fakeDocumentStorage struct {
	mu   sync.Mutex
	docs map[string]*models.SourceDocument
}

func (f *fakeDocumentStorage) SaveDocument(doc *models.SourceDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocumentStorage) GetDocument(id string) (*models.SourceDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id], nil
}

func (f *fakeDocumentStorage) DeleteDocument(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentStorage) ListDocuments(limit, offset int) ([]*models.SourceDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []*models.SourceDocument
	for _, d := range f.docs {
		docs = append(docs, d)
	}
	return docs, nil
}

func (f *fakeDocumentStorage) CountDocuments() (int, error) { return len(f.docs), nil }

type fakeVectorStorage struct {
	chunks []models.EmbeddedChunk
}

func (f *fakeVectorStorage) ReplaceDocumentChunks(documentID string, chunks []models.EmbeddedChunk) error {
	return nil
}

func (f *fakeVectorStorage) DeleteDocumentChunks(documentID string) error { return nil }

func (f *fakeVectorStorage) LoadAll() ([]models.EmbeddedChunk, error) { return f.chunks, nil }

func (f *fakeVectorStorage) CountChunks() (int, error) { return len(f.chunks), nil }

type fakeStorageManager struct {
	documents *fakeDocumentStorage
	vectors   *fakeVectorStorage
}

func (f *fakeStorageManager) DocumentStorage() interfaces.DocumentStorage { return f.documents }

func (f *fakeStorageManager) RecordStorage() interfaces.RecordStorage { return nil }

func (f *fakeStorageManager) RecordSearchIndex() interfaces.RecordSearchIndex { return nil }

func (f *fakeStorageManager) VectorStorage() interfaces.VectorStorage { return f.vectors }

func (f *fakeStorageManager) Close() error { return nil }

type testHarness struct {
	service    *Service
	embeddings *fakeEmbeddings
	index      *fakeIndex
	storage    *fakeStorageManager
}

func newHarness(t *testing.T, units []models.ExtractedUnit) *testHarness {
	t.Helper()

	chk, err := chunker.New(20, 200, 10)
	require.NoError(t, err)

	embeddings := &fakeEmbeddings{modelID: "fake-embed@3"}
	index := &fakeIndex{}
	storage := &fakeStorageManager{
		documents: &fakeDocumentStorage{docs: make(map[string]*models.SourceDocument)},
		vectors:   &fakeVectorStorage{},
	}

	cfg := common.NewDefaultConfig()
	service := NewService(
		&fakeRegistry{extractor: &fakeExtractor{units: units}},
		chk,
		embeddings,
		index,
		storage,
		cfg,
		arbor.NewLogger(),
	)

	return &testHarness{service: service, embeddings: embeddings, index: index, storage: storage}
}

func textUnit(label, text string) models.ExtractedUnit {
	return models.ExtractedUnit{Label: label, Text: text, Confidence: 1.0}
}

func TestIngestHappyPath(t *testing.T) {
	h := newHarness(t, []models.ExtractedUnit{
		textUnit("document", "The office printer lives on the third floor next to the kitchen. Jobs stuck in the queue clear after a spooler restart."),
	})

	result, err := h.service.Ingest(context.Background(), "printer.txt", "txt", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, common.NewDocumentID("printer.txt"), result.DocumentID)
	assert.Greater(t, result.ChunkCount, 0)

	require.Len(t, h.index.replaces, 1)
	replaced := h.index.lastReplace()
	assert.Equal(t, result.DocumentID, replaced.documentID)
	assert.Len(t, replaced.chunks, result.ChunkCount)
	for _, c := range replaced.chunks {
		assert.Equal(t, "fake-embed@3", c.ModelID)
		assert.Equal(t, "txt", c.Format)
		assert.Equal(t, result.DocumentID, c.DocumentID)
	}

	doc, err := h.storage.documents.GetDocument(result.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Version)
	assert.True(t, doc.Indexable)
	assert.Equal(t, result.ChunkCount, doc.ChunkCount)
	assert.Equal(t, "fake-embed@3", doc.ModelID)
}

func TestIngestSameFilenameBumpsVersion(t *testing.T) {
	h := newHarness(t, []models.ExtractedUnit{
		textUnit("document", "Guest wifi password rotates on the first Monday of every month."),
	})

	first, err := h.service.Ingest(context.Background(), "wifi.txt", "txt", []byte("v1"))
	require.NoError(t, err)
	second, err := h.service.Ingest(context.Background(), "wifi.txt", "txt", []byte("v2"))
	require.NoError(t, err)

	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Len(t, h.index.replaces, 2, "re-ingest replaces the prior version in the index")

	doc, err := h.storage.documents.GetDocument(second.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Version)
}

func TestIngestZeroUnitsIsNotAnError(t *testing.T) {
	h := newHarness(t, nil)

	result, err := h.service.Ingest(context.Background(), "blank.txt", "txt", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunkCount)
	assert.Equal(t, 0, h.embeddings.calls)

	// Prior chunks for the document id are still cleared.
	require.Len(t, h.index.replaces, 1)
	assert.Empty(t, h.index.lastReplace().chunks)

	doc, err := h.storage.documents.GetDocument(result.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.False(t, doc.Indexable)
	assert.Equal(t, 0, doc.ChunkCount)
}

func TestIngestUnsupportedFormat(t *testing.T) {
	h := newHarness(t, nil)

	result, err := h.service.Ingest(context.Background(), "report.docx", "docx", []byte("payload"))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
	assert.Empty(t, h.index.replaces)
}

func TestIngestValidatesArguments(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.service.Ingest(context.Background(), "", "txt", []byte("payload"))
	assert.Error(t, err)

	_, err = h.service.Ingest(context.Background(), "empty.txt", "txt", nil)
	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestIngestEmbedFailureLeavesIndexUntouched(t *testing.T) {
	h := newHarness(t, []models.ExtractedUnit{
		textUnit("document", "Some content long enough to produce at least one chunk for embedding."),
	})
	h.embeddings.err = errors.New("quota exceeded")

	result, err := h.service.Ingest(context.Background(), "doc.txt", "txt", []byte("payload"))
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Empty(t, h.index.replaces, "a failed embedding must not modify the index")

	doc, err := h.storage.documents.GetDocument(common.NewDocumentID("doc.txt"))
	require.NoError(t, err)
	assert.Nil(t, doc, "a failed ingest must not register the document")
}

func TestDeleteCascadesIntoIndex(t *testing.T) {
	h := newHarness(t, []models.ExtractedUnit{
		textUnit("document", "Badge readers at the rear entrance accept contractor badges after hours."),
	})

	result, err := h.service.Ingest(context.Background(), "badges.txt", "txt", []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, h.service.Delete(context.Background(), result.DocumentID))
	assert.Equal(t, []string{result.DocumentID}, h.index.deletes)

	doc, err := h.storage.documents.GetDocument(result.DocumentID)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestProcessPendingReembedsStaleDocuments(t *testing.T) {
	h := newHarness(t, nil)

	staleDoc := &models.SourceDocument{
		ID:         "doc_stale",
		Filename:   "stale.txt",
		Format:     "txt",
		Version:    1,
		ChunkCount: 1,
		Indexable:  true,
		ModelID:    "legacy-embed@3",
		IngestedAt: time.Now().Add(-time.Hour),
	}
	currentDoc := &models.SourceDocument{
		ID:         "doc_current",
		Filename:   "current.txt",
		Format:     "txt",
		Version:    1,
		ChunkCount: 1,
		Indexable:  true,
		ModelID:    "fake-embed@3",
		IngestedAt: time.Now(),
	}
	require.NoError(t, h.storage.documents.SaveDocument(staleDoc))
	require.NoError(t, h.storage.documents.SaveDocument(currentDoc))

	h.storage.vectors.chunks = []models.EmbeddedChunk{
		{
			Chunk: models.Chunk{
				DocumentID: "doc_stale",
				UnitLabel:  "document",
				Text:       "Persisted chunk text survives model upgrades.",
				Confidence: 1.0,
			},
			Vector:  []float32{0.1, 0.2, 0.3},
			ModelID: "legacy-embed@3",
		},
	}

	require.NoError(t, h.service.ProcessPending(context.Background()))

	require.Len(t, h.index.replaces, 1)
	replaced := h.index.lastReplace()
	assert.Equal(t, "doc_stale", replaced.documentID)
	require.Len(t, replaced.chunks, 1)
	assert.Equal(t, "fake-embed@3", replaced.chunks[0].ModelID)
	assert.Equal(t, "Persisted chunk text survives model upgrades.", replaced.chunks[0].Text)

	doc, err := h.storage.documents.GetDocument("doc_stale")
	require.NoError(t, err)
	assert.Equal(t, "fake-embed@3", doc.ModelID)
}

func TestProcessPendingNoStaleDocuments(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.storage.documents.SaveDocument(&models.SourceDocument{
		ID:        "doc_current",
		Indexable: true,
		ModelID:   "fake-embed@3",
	}))

	require.NoError(t, h.service.ProcessPending(context.Background()))
	assert.Empty(t, h.index.replaces)
	assert.Equal(t, 0, h.embeddings.calls)
}
