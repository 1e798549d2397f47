package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/ternarybob/responsum/internal/services/chunker"
	"github.com/ternarybob/responsum/internal/services/workers"
)

// Service runs the ingestion pipeline: format routing, extraction,
// chunking, embedding and atomic index replacement. Documents ingest
// independently; a failure aborts only its own document and leaves any
// prior version of it intact.
type Service struct {
	registry   interfaces.ExtractorRegistry
	chunker    *chunker.Chunker
	embeddings interfaces.EmbeddingService
	index      interfaces.VectorIndex
	documents  interfaces.DocumentStorage
	vectors    interfaces.VectorStorage

	reembedWorkers int
	reembedLimit   int
	logger         arbor.ILogger
}

var _ interfaces.IngestService = (*Service)(nil)

func NewService(
	registry interfaces.ExtractorRegistry,
	chk *chunker.Chunker,
	embeddings interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	storage interfaces.StorageManager,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		registry:       registry,
		chunker:        chk,
		embeddings:     embeddings,
		index:          index,
		documents:      storage.DocumentStorage(),
		vectors:        storage.VectorStorage(),
		reembedWorkers: config.Ingest.MaxWorkers,
		reembedLimit:   config.Processing.Limit,
		logger:         logger,
	}
}

// Ingest processes one file end to end. Re-ingesting the same filename
// replaces the prior version atomically; no stale chunks survive. A
// document yielding zero extractable units is recorded as non-indexable
// with ChunkCount 0 and no error.
func (s *Service) Ingest(ctx context.Context, filename, format string, payload []byte) (*models.IngestResult, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename cannot be empty")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("document %s: %w", filename, models.ErrExtraction)
	}

	extractor, err := s.registry.Resolve(format)
	if err != nil {
		return nil, err
	}

	documentID := common.NewDocumentID(filename)
	start := time.Now()

	units, err := extractor.Extract(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", documentID, err)
	}

	var chunks []models.Chunk
	for i := range units {
		units[i].DocumentID = documentID
		for _, c := range s.chunker.Chunk(units[i]) {
			c.Format = format
			chunks = append(chunks, c)
		}
	}

	if len(chunks) == 0 {
		// Nothing indexable. Any prior version's chunks are removed so a
		// re-ingested document cannot serve stale content.
		if err := s.index.ReplaceDocument(ctx, documentID, nil); err != nil {
			return nil, fmt.Errorf("document %s: %w", documentID, err)
		}
		if err := s.saveDocument(documentID, filename, format, 0, false); err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("document_id", documentID).
			Str("filename", filename).
			Msg("Document yielded no indexable content")
		return &models.IngestResult{DocumentID: documentID, ChunkCount: 0}, nil
	}

	embedded, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", documentID, err)
	}

	if err := s.index.ReplaceDocument(ctx, documentID, embedded); err != nil {
		return nil, fmt.Errorf("document %s: %w", documentID, err)
	}
	if err := s.saveDocument(documentID, filename, format, len(embedded), true); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("filename", filename).
		Str("format", format).
		Int("units", len(units)).
		Int("chunks", len(embedded)).
		Dur("duration", time.Since(start)).
		Msg("Document ingested")

	return &models.IngestResult{DocumentID: documentID, ChunkCount: len(embedded)}, nil
}

// embedChunks embeds every chunk. The first failure aborts the document;
// the index has not been touched at that point.
func (s *Service) embedChunks(ctx context.Context, chunks []models.Chunk) ([]models.EmbeddedChunk, error) {
	modelID := s.embeddings.ModelID()
	embedded := make([]models.EmbeddedChunk, 0, len(chunks))
	for i := range chunks {
		vector, err := s.embeddings.Embed(ctx, chunks[i].Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %s: %w", chunks[i].Key(), err)
		}
		embedded = append(embedded, models.EmbeddedChunk{
			Chunk:   chunks[i],
			Vector:  vector,
			ModelID: modelID,
		})
	}
	return embedded, nil
}

func (s *Service) saveDocument(documentID, filename, format string, chunkCount int, indexable bool) error {
	version := 1
	if prior, err := s.documents.GetDocument(documentID); err == nil && prior != nil {
		version = prior.Version + 1
	}

	doc := &models.SourceDocument{
		ID:         documentID,
		Filename:   filename,
		Format:     format,
		Version:    version,
		ChunkCount: chunkCount,
		Indexable:  indexable,
		ModelID:    s.embeddings.ModelID(),
		IngestedAt: time.Now(),
	}
	if err := s.documents.SaveDocument(doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", documentID, err)
	}
	return nil
}

// Delete removes a document and cascades into the vector index. Deleting an
// unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if err := s.index.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document %s from index: %w", documentID, err)
	}
	if err := s.documents.DeleteDocument(documentID); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	s.logger.Info().Str("document_id", documentID).Msg("Document deleted")
	return nil
}

// Formats lists the registered ingestion formats.
func (s *Service) Formats() []string {
	return s.registry.Formats()
}

// ProcessPending re-embeds documents whose chunks were produced by a
// superseded embedding model, using the chunk text persisted alongside the
// vectors. Documents are processed in parallel, each owning its pipeline.
func (s *Service) ProcessPending(ctx context.Context) error {
	currentModel := s.embeddings.ModelID()

	docs, err := s.documents.ListDocuments(0, 0)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var stale []*models.SourceDocument
	for _, doc := range docs {
		if doc.Indexable && doc.ModelID != currentModel {
			stale = append(stale, doc)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if s.reembedLimit > 0 && len(stale) > s.reembedLimit {
		stale = stale[:s.reembedLimit]
	}

	chunks, err := s.vectors.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}
	byDoc := make(map[string][]models.EmbeddedChunk)
	for _, c := range chunks {
		byDoc[c.DocumentID] = append(byDoc[c.DocumentID], c)
	}

	s.logger.Info().
		Int("documents", len(stale)).
		Str("model", currentModel).
		Msg("Re-embedding documents with stale model")

	pool := workers.NewPool(ctx, s.reembedWorkers, s.logger)
	defer pool.Shutdown()
	pool.Start()
	for _, doc := range stale {
		doc := doc
		err := pool.Submit(func(jobCtx context.Context) error {
			return s.reembedDocument(jobCtx, doc, byDoc[doc.ID])
		})
		if err != nil {
			return fmt.Errorf("re-embedding aborted: %w", err)
		}
	}
	pool.Wait()

	if errs := pool.Errors(); len(errs) > 0 {
		return fmt.Errorf("re-embedding failed for %d of %d documents: %w", len(errs), len(stale), errs[0])
	}
	return nil
}

func (s *Service) reembedDocument(ctx context.Context, doc *models.SourceDocument, old []models.EmbeddedChunk) error {
	if len(old) == 0 {
		return nil
	}

	plain := make([]models.Chunk, len(old))
	for i := range old {
		plain[i] = old[i].Chunk
	}

	embedded, err := s.embedChunks(ctx, plain)
	if err != nil {
		return fmt.Errorf("document %s: %w", doc.ID, err)
	}
	if err := s.index.ReplaceDocument(ctx, doc.ID, embedded); err != nil {
		return fmt.Errorf("document %s: %w", doc.ID, err)
	}

	doc.ModelID = s.embeddings.ModelID()
	if err := s.documents.SaveDocument(doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}
	return nil
}
