package embeddings

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/ternarybob/responsum/internal/services/llm"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService generates embedding vectors with the Gemini embedding API.
// Calls are rate limited and bounded by a per-call timeout; transient
// failures are retried a bounded number of times before the error is
// surfaced with its transience classification.
type GeminiService struct {
	client       *genai.Client
	model        string
	dimension    int
	timeout      time.Duration
	maxBatchText int
	limiter      *rate.Limiter
	logger       arbor.ILogger
}

var _ interfaces.EmbeddingService = (*GeminiService)(nil)

const embedMaxRetries = 2

// NewGeminiService creates the embedding service from config. The API key
// comes from GEMINI_API_KEY or gemini.api_key.
func NewGeminiService(config *common.Config, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for embeddings (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	interval := config.Embeddings.RateLimit
	if interval <= 0 {
		interval = time.Second
	}

	logger.Info().
		Str("model", config.Embeddings.Model).
		Int("dimension", config.Embeddings.Dimension).
		Dur("rate_limit", interval).
		Msg("Embedding service initialized")

	return &GeminiService{
		client:       client,
		model:        config.Embeddings.Model,
		dimension:    config.Embeddings.Dimension,
		timeout:      config.Embeddings.Timeout,
		maxBatchText: config.Embeddings.MaxBatchText,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		logger:       logger,
	}, nil
}

// Embed generates a vector for the text. Errors are returned as
// EmbeddingError so callers can distinguish transient failures (worth
// retrying the document later) from permanent ones.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &models.EmbeddingError{Err: fmt.Errorf("text cannot be empty")}
	}
	if s.maxBatchText > 0 && len(text) > s.maxBatchText {
		text = truncateAtRune(text, s.maxBatchText)
	}

	var lastErr error
	for attempt := 0; attempt <= embedMaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &models.EmbeddingError{Transient: true, Err: err}
		}

		vector, err := s.embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if !llm.IsTransientError(err) {
			return nil, &models.EmbeddingError{Err: err}
		}
		if attempt < embedMaxRetries {
			backoff := llm.ExtractRetryDelay(err)
			if backoff == 0 {
				backoff = time.Duration(attempt+1) * 2 * time.Second
			}
			s.logger.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("Transient embedding failure, retrying")
			select {
			case <-ctx.Done():
				return nil, &models.EmbeddingError{Transient: true, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}
	}

	return nil, &models.EmbeddingError{Transient: true, Err: lastErr}
}

func (s *GeminiService) embed(ctx context.Context, text string) ([]float32, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	result, err := s.client.Models.EmbedContent(timeoutCtx, s.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var vector []float32
	if result != nil && len(result.Embeddings) > 0 {
		vector = result.Embeddings[0].Values
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	return vector, nil
}

// truncateAtRune cuts text to at most max bytes without splitting a
// multi-byte UTF-8 rune, stepping back to the nearest rune start.
func truncateAtRune(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// ModelID identifies the embedding model and dimensionality. Vectors from
// different model IDs are never compared against each other.
func (s *GeminiService) ModelID() string {
	return fmt.Sprintf("%s@%d", s.model, s.dimension)
}

// Dimension returns the configured output dimensionality.
func (s *GeminiService) Dimension() int {
	return s.dimension
}
