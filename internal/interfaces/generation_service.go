package interfaces

import "context"

// GenerationService is the external text-generation function. Generate may
// be slow (seconds); implementations apply a timeout and bounded retries for
// transient failures. An unreachable generator surfaces as
// models.ErrGenerationUnavailable.
type GenerationService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
