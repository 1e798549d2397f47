package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// Extractor turns a raw file payload into a sequence of extracted units.
// Extractors are pure: they never mutate or persist anything. A document the
// extractor cannot produce units for (e.g. an image below the OCR confidence
// threshold) yields an empty slice and a nil error; callers treat that as
// "not indexable", not as a failure.
type Extractor interface {
	// Formats returns the format identifiers this extractor handles.
	Formats() []string

	// Extract parses the payload and returns zero or more units. It wraps
	// unreadable payloads in models.ErrExtraction.
	Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error)
}

// ExtractorRegistry resolves a declared format to its extractor. Formats are
// registered once at startup; unknown formats fail closed with
// models.ErrUnsupportedFormat.
type ExtractorRegistry interface {
	Resolve(format string) (Extractor, error)
	Formats() []string
}

// OCRClient is the optical character recognizer behind the image extractor.
// Implementations return per-block text with the recognizer's own confidence
// in [0,1].
type OCRClient interface {
	Recognize(ctx context.Context, image []byte) ([]models.OCRBlock, error)
	Close() error
}
