package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"google.golang.org/genai"
)

// GeminiService generates answer text using the Gemini API.
type GeminiService struct {
	config  *common.GeminiConfig
	client  *genai.Client
	timeout time.Duration
	retry   *RetryConfig
	logger  arbor.ILogger
}

var _ interfaces.GenerationService = (*GeminiService)(nil)

// NewGeminiService creates a Gemini generation service. The API key comes
// from GEMINI_API_KEY or gemini.api_key in config.
func NewGeminiService(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini generation service initialized")

	return &GeminiService{
		config:  config,
		client:  client,
		timeout: timeout,
		retry:   NewDefaultRetryConfig(),
		logger:  logger,
	}, nil
}

// Generate produces a completion for the prompt. Rate limit errors are
// retried with backoff; exhausted retries surface as
// ErrGenerationUnavailable so callers can degrade to a fallback answer.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.retry.CalculateBackoff(attempt-1, ExtractRetryDelay(lastErr))
			s.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying Gemini generation after rate limit")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := s.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRateLimitError(err) {
			break
		}
	}

	s.logger.Error().Err(lastErr).Msg("Gemini generation failed")
	return "", fmt.Errorf("%v: %w", lastErr, models.ErrGenerationUnavailable)
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}

	return response.String(), nil
}

// Close releases the client reference.
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}
