package extract

import (
	"context"
	"strings"

	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// TextExtractor handles plain text documents. The whole payload becomes a
// single unit.
type TextExtractor struct{}

var _ interfaces.Extractor = (*TextExtractor)(nil)

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Formats() []string {
	return []string{models.FormatText}
}

func (e *TextExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return nil, nil
	}
	return []models.ExtractedUnit{
		{Label: "document", Text: text, Confidence: 1.0},
	}, nil
}
