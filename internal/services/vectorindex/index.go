package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Index is an in-memory cosine-similarity index backed by persistent chunk
// storage. Mutations are written to storage first and applied to memory
// only on success, so a failed replace leaves the prior version visible.
type Index struct {
	storage interfaces.VectorStorage
	logger  arbor.ILogger

	mu    sync.RWMutex
	byDoc map[string][]models.EmbeddedChunk

	// Serializes mutations per document id while distinct ids proceed
	// concurrently.
	docMu sync.Mutex
	locks map[string]*sync.Mutex
}

var _ interfaces.VectorIndex = (*Index)(nil)

// New creates the index and loads all persisted chunks into memory.
func New(storage interfaces.VectorStorage, logger arbor.ILogger) (*Index, error) {
	idx := &Index{
		storage: storage,
		logger:  logger,
		byDoc:   make(map[string][]models.EmbeddedChunk),
		locks:   make(map[string]*sync.Mutex),
	}

	chunks, err := storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load vector index: %w", err)
	}
	for _, chunk := range chunks {
		idx.byDoc[chunk.DocumentID] = append(idx.byDoc[chunk.DocumentID], chunk)
	}

	logger.Info().
		Int("documents", len(idx.byDoc)).
		Int("chunks", len(chunks)).
		Msg("Vector index loaded")

	return idx, nil
}

// docLock returns the mutex serializing mutations for one document id.
func (idx *Index) docLock(documentID string) *sync.Mutex {
	idx.docMu.Lock()
	defer idx.docMu.Unlock()
	lock, ok := idx.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		idx.locks[documentID] = lock
	}
	return lock
}

// ReplaceDocument atomically swaps all chunks for a document.
func (idx *Index) ReplaceDocument(ctx context.Context, documentID string, chunks []models.EmbeddedChunk) error {
	if documentID == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := idx.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	if err := idx.storage.ReplaceDocumentChunks(documentID, chunks); err != nil {
		return fmt.Errorf("failed to persist chunks for %s: %w", documentID, err)
	}

	idx.mu.Lock()
	if len(chunks) == 0 {
		delete(idx.byDoc, documentID)
	} else {
		replacement := make([]models.EmbeddedChunk, len(chunks))
		copy(replacement, chunks)
		idx.byDoc[documentID] = replacement
	}
	idx.mu.Unlock()

	idx.logger.Debug().
		Str("document_id", documentID).
		Int("chunks", len(chunks)).
		Msg("Replaced document in vector index")

	return nil
}

// Delete removes all chunks for a document. Absent documents are a no-op.
func (idx *Index) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := idx.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	if err := idx.storage.DeleteDocumentChunks(documentID); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", documentID, err)
	}

	idx.mu.Lock()
	delete(idx.byDoc, documentID)
	idx.mu.Unlock()

	return nil
}

// Search returns up to k hits ordered by descending similarity. Only
// vectors carrying the given model id participate; an empty index yields an
// empty result.
func (idx *Index) Search(ctx context.Context, query []float32, k int, modelID string) ([]models.RetrievalHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var hits []models.RetrievalHit
	for _, chunks := range idx.byDoc {
		for i := range chunks {
			chunk := &chunks[i]
			if chunk.ModelID != modelID || len(chunk.Vector) != len(query) {
				continue
			}
			score := cosineSimilarity(query, chunk.Vector)
			hits = append(hits, models.RetrievalHit{
				Kind:         models.SourceVector,
				Score:        score,
				Text:         chunk.Text,
				ProvenanceID: chunk.DocumentID,
				Label:        chunk.UnitLabel,
				Confidence:   chunk.Confidence,
				StartOffset:  chunk.StartOffset,
				EndOffset:    chunk.EndOffset,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	total := 0
	for _, chunks := range idx.byDoc {
		total += len(chunks)
	}
	return total
}

// cosineSimilarity maps the cosine of the angle between the vectors into
// [0,1]; zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	score := (cos + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
