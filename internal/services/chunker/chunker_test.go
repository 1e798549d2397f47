package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/responsum/internal/models"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		min     int
		max     int
		overlap int
		wantErr bool
	}{
		{name: "valid", min: 200, max: 1200, overlap: 120, wantErr: false},
		{name: "zero min", min: 0, max: 100, overlap: 0, wantErr: true},
		{name: "max below min", min: 100, max: 100, overlap: 0, wantErr: true},
		{name: "overlap at max", min: 10, max: 50, overlap: 50, wantErr: true},
		{name: "negative overlap", min: 10, max: 50, overlap: -1, wantErr: true},
		{name: "zero overlap ok", min: 10, max: 50, overlap: 0, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.min, tt.max, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunkEmptyTextYieldsNothing(t *testing.T) {
	c, err := New(10, 50, 5)
	require.NoError(t, err)

	assert.Empty(t, c.Chunk(models.ExtractedUnit{Text: ""}))
	assert.Empty(t, c.Chunk(models.ExtractedUnit{Text: "   \n\t  "}))
}

func TestChunkShortTextIsSingleChunk(t *testing.T) {
	c, err := New(50, 200, 20)
	require.NoError(t, err)

	unit := models.ExtractedUnit{
		DocumentID: "doc_1",
		Label:      "document",
		Text:       "Short note.",
		Confidence: 1.0,
	}

	chunks := c.Chunk(unit)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Short note.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(unit.Text), chunks[0].EndOffset)
	assert.Equal(t, "doc_1", chunks[0].DocumentID)
	assert.Equal(t, "document", chunks[0].UnitLabel)
}

func TestChunkBoundsAndOrdinals(t *testing.T) {
	c, err := New(40, 100, 10)
	require.NoError(t, err)

	// Many short sentences so boundaries are always available.
	text := strings.Repeat("This is a sentence about printers. ", 30)
	chunks := c.Chunk(models.ExtractedUnit{DocumentID: "doc_1", Label: "page:1", Text: text})

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.NotEmpty(t, chunk.Text)
		assert.LessOrEqual(t, len([]rune(chunk.Text)), 100, "chunk %d exceeds max", i)
		if i < len(chunks)-1 {
			assert.GreaterOrEqual(t, len([]rune(chunk.Text)), 40, "chunk %d below min", i)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	c, err := New(40, 100, 10)
	require.NoError(t, err)

	text := strings.Repeat("Yet another plain sentence goes here. ", 20)
	chunks := c.Chunk(models.ExtractedUnit{Text: text})
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].EndOffset-10, chunks[i].StartOffset,
			"chunk %d should start inside its predecessor's tail", i)
	}
}

func TestChunkOffsetsMapBackToUnitText(t *testing.T) {
	c, err := New(40, 100, 10)
	require.NoError(t, err)

	text := strings.Repeat("Offsets must stay consistent everywhere. ", 15)
	runes := []rune(text)
	for _, chunk := range c.Chunk(models.ExtractedUnit{Text: text}) {
		assert.Equal(t, string(runes[chunk.StartOffset:chunk.EndOffset]), chunk.Text)
	}
}

func TestChunkHardSplitWithoutBoundaries(t *testing.T) {
	c, err := New(10, 30, 5)
	require.NoError(t, err)

	// One unbroken token, no sentence, line or word boundaries.
	text := strings.Repeat("x", 95)
	chunks := c.Chunk(models.ExtractedUnit{Text: text})

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks[:len(chunks)-1] {
		assert.Len(t, chunk.Text, 30, "chunk %d should hard-split at max", i)
	}
	assert.NotEmpty(t, chunks[len(chunks)-1].Text)
}

func TestChunkPrefersSentenceBoundary(t *testing.T) {
	c, err := New(10, 60, 0)
	require.NoError(t, err)

	text := "First sentence ends here. Second sentence is somewhat longer than the first one. Third."
	chunks := c.Chunk(models.ExtractedUnit{Text: text})

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(strings.TrimRight(chunks[0].Text, " "), "."),
		"first chunk should end at a sentence boundary, got %q", chunks[0].Text)
}
