package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// ImageExtractor runs OCR over image documents. Output below the confidence
// floor, or empty output, yields zero units rather than an error so the
// document is recorded as non-indexable.
type ImageExtractor struct {
	ocr           interfaces.OCRClient
	minConfidence float64
	logger        arbor.ILogger
}

var _ interfaces.Extractor = (*ImageExtractor)(nil)

func NewImageExtractor(ocr interfaces.OCRClient, minConfidence float64, logger arbor.ILogger) *ImageExtractor {
	return &ImageExtractor{
		ocr:           ocr,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

func (e *ImageExtractor) Formats() []string {
	return []string{models.FormatPNG, models.FormatJPEG}
}

func (e *ImageExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	blocks, err := e.ocr.Recognize(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %v: %w", err, models.ErrExtraction)
	}

	var parts []string
	var confSum float64
	for _, block := range blocks {
		text := strings.TrimSpace(block.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		confSum += block.Confidence
	}
	if len(parts) == 0 {
		e.logger.Debug().Msg("OCR produced no text")
		return nil, nil
	}

	confidence := confSum / float64(len(parts))
	if confidence < e.minConfidence {
		e.logger.Info().
			Float64("confidence", confidence).
			Float64("floor", e.minConfidence).
			Msg("OCR confidence below floor, skipping image")
		return nil, nil
	}

	return []models.ExtractedUnit{
		{Label: "ocr", Text: strings.Join(parts, "\n"), Confidence: confidence},
	}, nil
}
