package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Service is the query entry point: it embeds the question, fans out to the
// vector index and the structured search concurrently, assembles the merged
// context and synthesizes the answer.
type Service struct {
	embeddings  interfaces.EmbeddingService
	index       interfaces.VectorIndex
	structured  interfaces.StructuredSearch
	assembler   *Assembler
	synthesizer *Synthesizer

	topK          int
	topM          int
	sourceTimeout time.Duration
	logger        arbor.ILogger
}

var _ interfaces.AnswerService = (*Service)(nil)

func NewService(
	embeddings interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	structured interfaces.StructuredSearch,
	generator interfaces.GenerationService,
	config *common.RetrievalConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		embeddings:    embeddings,
		index:         index,
		structured:    structured,
		assembler:     NewAssembler(config.BudgetChars, logger),
		synthesizer:   NewSynthesizer(generator, logger),
		topK:          config.TopK,
		topM:          config.TopM,
		sourceTimeout: config.SourceTimeout,
		logger:        logger,
	}
}

type sourceResult struct {
	hits []models.RetrievalHit
	err  error
}

// Answer runs the hybrid query. A failing or timed-out retrieval source
// contributes zero hits; both sources failing surfaces
// ErrIndexUnavailable, which is distinct from a successful query with no
// results.
func (s *Service) Answer(ctx context.Context, question string) (*models.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return &models.AnswerResult{
			Answer:     noInformationAnswer,
			Confidence: 0,
		}, nil
	}

	start := time.Now()

	vectorCh := make(chan sourceResult, 1)
	structuredCh := make(chan sourceResult, 1)

	searchCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	go func() {
		hits, err := s.searchVector(searchCtx, question)
		vectorCh <- sourceResult{hits: hits, err: err}
	}()
	go func() {
		hits, err := s.structured.SearchRelevant(searchCtx, question, s.topM)
		structuredCh <- sourceResult{hits: hits, err: err}
	}()

	vector := <-vectorCh
	structured := <-structuredCh

	if vector.err != nil {
		s.logger.Warn().Err(vector.err).Msg("Vector retrieval failed, contributing zero hits")
	}
	if structured.err != nil {
		s.logger.Warn().Err(structured.err).Msg("Structured retrieval failed, contributing zero hits")
	}
	if vector.err != nil && structured.err != nil {
		// A canceled caller makes both sources fail with its context error;
		// that is not an index outage.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("vector: %v; structured: %v: %w", vector.err, structured.err, models.ErrIndexUnavailable)
	}

	assembled := s.assembler.Assemble(vector.hits, structured.hits)
	result, err := s.synthesizer.Synthesize(ctx, question, assembled)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("vector_hits", len(vector.hits)).
		Int("structured_hits", len(structured.hits)).
		Int("cited", len(result.Sources)).
		Float64("confidence", result.Confidence).
		Dur("duration", time.Since(start)).
		Msg("Answered question")

	return result, nil
}

// searchVector embeds the question and queries the index.
func (s *Service) searchVector(ctx context.Context, question string) ([]models.RetrievalHit, error) {
	query, err := s.embeddings.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	return s.index.Search(ctx, query, s.topK, s.embeddings.ModelID())
}
