package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// DocxExtractor pulls paragraph text out of the word/document.xml part of a
// DOCX archive. The flattened body becomes a single unit, like plain text.
type DocxExtractor struct {
	logger arbor.ILogger
}

var _ interfaces.Extractor = (*DocxExtractor)(nil)

func NewDocxExtractor(logger arbor.ILogger) *DocxExtractor {
	return &DocxExtractor{logger: logger}
}

func (e *DocxExtractor) Formats() []string {
	return []string{models.FormatDOCX}
}

func (e *DocxExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX archive: %v: %w", err, models.ErrExtraction)
	}

	var body *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("DOCX archive has no document body: %w", models.ErrExtraction)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX body: %v: %w", err, models.ErrExtraction)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOCX body: %v: %w", err, models.ErrExtraction)
	}

	text := strings.TrimSpace(strings.Join(paragraphs, "\n"))
	if text == "" {
		return nil, nil
	}

	e.logger.Debug().
		Int("paragraphs", len(paragraphs)).
		Msg("Extracted DOCX body")

	return []models.ExtractedUnit{
		{Label: "document", Text: text, Confidence: 1.0},
	}, nil
}

// docxParagraphs streams the WordprocessingML body, flattening each w:p
// paragraph to its run text. Tabs and explicit breaks become spaces.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab", "br":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(current.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
