package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ternarybob/responsum/internal/models"
)

// Chunker splits extracted units into overlapping, bounded-size passages.
// Every chunk except the final remainder has a length in
// [minChars, maxChars]; the remainder may be shorter but never empty.
type Chunker struct {
	minChars     int
	maxChars     int
	overlapChars int
}

// New validates the bounds and returns a chunker.
func New(minChars, maxChars, overlapChars int) (*Chunker, error) {
	if minChars <= 0 {
		return nil, fmt.Errorf("min chars must be positive, got %d", minChars)
	}
	if maxChars <= minChars {
		return nil, fmt.Errorf("max chars (%d) must exceed min chars (%d)", maxChars, minChars)
	}
	if overlapChars < 0 || overlapChars >= maxChars {
		return nil, fmt.Errorf("overlap chars (%d) must be in [0, max chars)", overlapChars)
	}
	return &Chunker{
		minChars:     minChars,
		maxChars:     maxChars,
		overlapChars: overlapChars,
	}, nil
}

// Chunk splits one unit's text. Accumulation is greedy: each chunk takes the
// furthest sentence/line boundary within the window, falls back to the last
// word boundary, and hard-splits at the character limit only when no
// boundary exists. Each chunk after the first re-includes the trailing
// overlap of its predecessor. Empty text yields zero chunks.
func (c *Chunker) Chunk(unit models.ExtractedUnit) []models.Chunk {
	if strings.TrimSpace(unit.Text) == "" {
		return nil
	}

	runes := []rune(unit.Text)
	var chunks []models.Chunk

	start := 0
	ordinal := 0
	for start < len(runes) {
		end := len(runes)
		if len(runes)-start > c.maxChars {
			end = c.cutPoint(runes, start)
		}

		chunks = append(chunks, models.Chunk{
			DocumentID:  unit.DocumentID,
			UnitLabel:   unit.Label,
			Ordinal:     ordinal,
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
			Confidence:  unit.Confidence,
		})

		if end == len(runes) {
			break
		}

		next := end - c.overlapChars
		if next <= start {
			// Overlap would stall the scan; advance past the previous start.
			next = start + 1
		}
		start = next
		ordinal++
	}

	return chunks
}

// cutPoint finds the end of the next chunk beginning at start, preferring
// the furthest sentence/line boundary in (start+min, start+max], then the
// last word boundary, then a hard split at start+max.
func (c *Chunker) cutPoint(runes []rune, start int) int {
	limit := start + c.maxChars
	floor := start + c.minChars

	lastSentence := -1
	lastSpace := -1
	for i := floor + 1; i <= limit; i++ {
		if isSentenceBoundary(runes, i) {
			lastSentence = i
		}
		if unicode.IsSpace(runes[i-1]) {
			lastSpace = i
		}
	}

	if lastSentence > 0 {
		return lastSentence
	}
	if lastSpace > 0 {
		return lastSpace
	}
	return limit
}

// isSentenceBoundary reports whether position i (a cut between runes[i-1]
// and runes[i]) ends a sentence or line.
func isSentenceBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '\n' {
		return true
	}
	if prev == '.' || prev == '!' || prev == '?' {
		return i == len(runes) || unicode.IsSpace(runes[i])
	}
	return false
}
