package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/models"
)

// docxPayload zips a WordprocessingML body the way a .docx file carries it.
func docxPayload(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Printer troubleshooting guide</w:t></w:r></w:p>
    <w:p><w:r><w:t>Check the toner</w:t></w:r><w:r><w:tab/><w:t>then restart.</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve"> </w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestDocxExtract(t *testing.T) {
	extractor := NewDocxExtractor(arbor.NewLogger())

	units, err := extractor.Extract(context.Background(), docxPayload(t, docxBody))
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Equal(t, "document", units[0].Label)
	assert.Equal(t, 1.0, units[0].Confidence)
	assert.Equal(t, "Printer troubleshooting guide\nCheck the toner then restart.", units[0].Text)
}

func TestDocxExtractEmptyBody(t *testing.T) {
	extractor := NewDocxExtractor(arbor.NewLogger())

	empty := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`
	units, err := extractor.Extract(context.Background(), docxPayload(t, empty))
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestDocxExtractNotAnArchive(t *testing.T) {
	extractor := NewDocxExtractor(arbor.NewLogger())

	_, err := extractor.Extract(context.Background(), []byte("plain text, not a zip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExtraction))
}

func TestDocxExtractMissingBody(t *testing.T) {
	extractor := NewDocxExtractor(arbor.NewLogger())

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = extractor.Extract(context.Background(), buf.Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExtraction))
}

func TestDocxFormats(t *testing.T) {
	extractor := NewDocxExtractor(arbor.NewLogger())
	assert.Equal(t, []string{models.FormatDOCX}, extractor.Formats())
}
