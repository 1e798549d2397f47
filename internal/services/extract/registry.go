package extract

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Registry maps declared document formats to their extractors.
type Registry struct {
	extractors map[string]interfaces.Extractor
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ExtractorRegistry = (*Registry)(nil)

// NewRegistry builds a registry from the given extractors. Later extractors
// claiming an already-registered format win.
func NewRegistry(logger arbor.ILogger, extractors ...interfaces.Extractor) *Registry {
	r := &Registry{
		extractors: make(map[string]interfaces.Extractor),
		logger:     logger,
	}
	for _, e := range extractors {
		for _, format := range e.Formats() {
			r.extractors[format] = e
		}
	}
	return r
}

// Resolve returns the extractor registered for format, or
// ErrUnsupportedFormat when no extractor claims it.
func (r *Registry) Resolve(format string) (interfaces.Extractor, error) {
	e, ok := r.extractors[format]
	if !ok {
		return nil, fmt.Errorf("format %q: %w", format, models.ErrUnsupportedFormat)
	}
	return e, nil
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.extractors))
	for f := range r.extractors {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
