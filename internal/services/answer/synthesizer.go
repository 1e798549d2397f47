package answer

import (
	"context"
	"errors"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Synthesizer turns an assembled context into a grounded answer with a
// confidence estimate, cited sources and follow-up suggestions.
type Synthesizer struct {
	generator interfaces.GenerationService
	logger    arbor.ILogger
}

const (
	noInformationAnswer    = "No relevant information was found for this question."
	generationFailedAnswer = "Answer generation is currently unavailable. The sources below were retrieved for this question; please consult them directly or try again later."
)

// Markers the generator emits when the context cannot support an answer.
var uncertaintyMarkers = []string{
	"insufficient information",
	"not enough information",
	"cannot answer",
	"does not contain",
	"no information",
}

func NewSynthesizer(generator interfaces.GenerationService, logger arbor.ILogger) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		logger:    logger,
	}
}

// Synthesize answers the question from the assembled context. An empty
// context short-circuits to a fixed answer with confidence 0 and never
// reaches the generator. An unreachable generator degrades to a
// zero-confidence fallback that still carries the retrieved sources.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, assembled *models.AssembledContext) (*models.AnswerResult, error) {
	if assembled.Empty() {
		return &models.AnswerResult{
			Question:   question,
			Answer:     noInformationAnswer,
			Confidence: 0,
		}, nil
	}

	result := &models.AnswerResult{
		Question:          question,
		Sources:           assembled.Hits,
		SuggestedActions:  suggestActions(question, assembled.Hits),
		SuggestedCategory: suggestCategory(assembled.Hits),
	}

	text, err := s.generator.Generate(ctx, buildAnswerPrompt(question, assembled))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Warn().Err(err).Msg("Generator unavailable, returning fallback answer")
		result.Answer = generationFailedAnswer
		result.Confidence = 0
		return result, nil
	}

	result.Answer = strings.TrimSpace(text)
	result.Confidence = deriveConfidence(assembled.Hits, result.Answer)
	return result, nil
}

// deriveConfidence combines retrieval quality (hit count and average
// relevance), extraction confidence of the cited hits, and the generator's
// own uncertainty signal into a [0,1] score.
func deriveConfidence(hits []models.RetrievalHit, answer string) float64 {
	if len(hits) == 0 {
		return 0
	}

	var scoreSum, extractSum float64
	for i := range hits {
		scoreSum += hits[i].Score
		extractSum += hits[i].Confidence
	}
	avgScore := scoreSum / float64(len(hits))
	avgExtract := extractSum / float64(len(hits))

	// More corroborating hits raise confidence, saturating at three.
	coverage := float64(len(hits)) / 3.0
	if coverage > 1 {
		coverage = 1
	}

	confidence := avgScore * (0.6 + 0.4*coverage) * avgExtract

	if signalsUncertainty(answer) {
		confidence *= 0.25
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func signalsUncertainty(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range uncertaintyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// suggestActions derives best-effort next steps from the question and the
// cited sources. Never authoritative.
func suggestActions(question string, hits []models.RetrievalHit) []string {
	var actions []string

	lower := strings.ToLower(question)
	for _, word := range []string{"help", "problem", "issue", "error", "broken", "not working"} {
		if strings.Contains(lower, word) {
			actions = append(actions, "Create a support ticket if the suggested solutions don't resolve your issue")
			break
		}
	}

	var hasKB, hasTicket bool
	for i := range hits {
		if hits[i].Kind != models.SourceStructured {
			continue
		}
		switch hits[i].Label {
		case string(models.RecordKB):
			hasKB = true
		case string(models.RecordTicket):
			hasTicket = true
		}
	}
	if hasKB {
		actions = append(actions, "Review the cited knowledge base articles for detailed procedures")
	}
	if hasTicket {
		actions = append(actions, "Check the resolution steps from similar resolved tickets")
	}

	return actions
}

// suggestCategory propagates the category of the highest-ranked structured
// hit that carries one. Hits arrive already ranked, so the first match is
// the strongest signal.
func suggestCategory(hits []models.RetrievalHit) string {
	for i := range hits {
		if hits[i].Kind == models.SourceStructured && hits[i].Category != "" {
			return hits[i].Category
		}
	}
	return ""
}
