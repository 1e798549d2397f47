package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/models"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// fakeOCR returns canned blocks for image extractor tests.
type fakeOCR struct {
	blocks []models.OCRBlock
	err    error
}

func (f *fakeOCR) Recognize(ctx context.Context, image []byte) ([]models.OCRBlock, error) {
	return f.blocks, f.err
}

func (f *fakeOCR) Close() {}

func TestImageExtract(t *testing.T) {
	tests := []struct {
		name      string
		blocks    []models.OCRBlock
		threshold float64
		wantUnits int
		wantConf  float64
	}{
		{
			name: "confident text",
			blocks: []models.OCRBlock{
				{Text: "Error code E42", Confidence: 0.9},
				{Text: "Replace toner", Confidence: 0.7},
			},
			threshold: 0.4,
			wantUnits: 1,
			wantConf:  0.8,
		},
		{
			name: "below confidence floor",
			blocks: []models.OCRBlock{
				{Text: "g4rbl3", Confidence: 0.2},
			},
			threshold: 0.4,
			wantUnits: 0,
		},
		{
			name:      "no recognized text",
			blocks:    nil,
			threshold: 0.4,
			wantUnits: 0,
		},
		{
			name: "whitespace-only blocks",
			blocks: []models.OCRBlock{
				{Text: "   ", Confidence: 0.9},
			},
			threshold: 0.4,
			wantUnits: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewImageExtractor(&fakeOCR{blocks: tt.blocks}, tt.threshold, testLogger())

			units, err := e.Extract(context.Background(), []byte("png-bytes"))
			require.NoError(t, err)
			require.Len(t, units, tt.wantUnits)

			if tt.wantUnits == 1 {
				assert.Equal(t, "ocr", units[0].Label)
				assert.InDelta(t, tt.wantConf, units[0].Confidence, 1e-9)
				assert.Contains(t, units[0].Text, "Error code E42")
			}
		})
	}
}

func TestImageExtractOCRFailure(t *testing.T) {
	e := NewImageExtractor(&fakeOCR{err: errors.New("engine crashed")}, 0.4, testLogger())

	_, err := e.Extract(context.Background(), []byte("png-bytes"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExtraction))
}
