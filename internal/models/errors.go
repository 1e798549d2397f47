package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the ingestion and query paths. Callers classify with
// errors.Is/errors.As; handlers map these to HTTP status codes.
var (
	// ErrUnsupportedFormat: the declared format matches no registered extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction: the underlying parser could not read the payload.
	ErrExtraction = errors.New("extraction failed")

	// ErrGenerationUnavailable: the external generator could not be reached.
	// The synthesizer absorbs this into a zero-confidence fallback answer.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrIndexUnavailable: neither retrieval source was reachable. Fatal to
	// the query and surfaced distinctly from "no results found".
	ErrIndexUnavailable = errors.New("index unavailable")
)

// EmbeddingError wraps a failure from the external embedding function and
// records whether it is transient. Only transient failures are retried;
// permanent ones (e.g. text too long) are not.
type EmbeddingError struct {
	Transient bool
	Err       error
}

func (e *EmbeddingError) Error() string {
	if e.Transient {
		return fmt.Sprintf("transient embedding error: %v", e.Err)
	}
	return fmt.Sprintf("permanent embedding error: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsTransientEmbedding reports whether err is a retryable embedding failure.
func IsTransientEmbedding(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee) && ee.Transient
}
