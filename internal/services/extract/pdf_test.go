package extract

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/responsum/internal/models"
)

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, page := range pages {
		doc.AddPage()
		doc.MultiCell(0, 8, page, "", "L", false)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestPDFExtractPages(t *testing.T) {
	e := NewPDFExtractor(testLogger())

	payload := buildPDF(t,
		"Reset the printer from the admin panel.",
		"Escalate to network support if the jam persists.",
	)

	units, err := e.Extract(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "page:1", units[0].Label)
	assert.Contains(t, units[0].Text, "admin panel")
	assert.Equal(t, "page:2", units[1].Label)
	assert.Contains(t, units[1].Text, "network support")

	for _, u := range units {
		assert.Equal(t, 1.0, u.Confidence)
	}
}

func TestPDFExtractCorruptPayload(t *testing.T) {
	e := NewPDFExtractor(testLogger())

	_, err := e.Extract(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExtraction))
}
