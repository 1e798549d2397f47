package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// NewGenerationService builds the generation provider selected by
// llm.default_provider in config.
func NewGenerationService(config *common.Config, logger arbor.ILogger) (interfaces.GenerationService, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return NewClaudeService(&config.Claude, logger)
	case common.LLMProviderGemini, "":
		return NewGeminiService(&config.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (expected gemini or claude)", config.LLM.DefaultProvider)
	}
}
