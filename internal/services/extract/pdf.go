package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// PDFExtractor extracts text page by page using pdfcpu. Each page with
// content becomes one unit labeled "page:N".
type PDFExtractor struct {
	logger  arbor.ILogger
	tempDir string
}

var _ interfaces.Extractor = (*PDFExtractor)(nil)

func NewPDFExtractor(logger arbor.ILogger) *PDFExtractor {
	tempDir := filepath.Join(os.TempDir(), "responsum-pdf")
	os.MkdirAll(tempDir, 0755)

	return &PDFExtractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

func (e *PDFExtractor) Formats() []string {
	return []string{models.FormatPDF}
}

func (e *PDFExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	workDir, err := os.MkdirTemp(e.tempDir, "extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// pdfcpu operates on files, so the payload goes through a temp file.
	tempFile := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(tempFile, payload, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %v: %w", err, models.ErrExtraction)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(workDir, "pages")
	os.MkdirAll(outDir, 0755)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %v: %w", err, models.ErrExtraction)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	units := make([]models.ExtractedUnit, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		units = append(units, models.ExtractedUnit{
			Label:      fmt.Sprintf("page:%d", pageNum),
			Text:       text,
			Confidence: 1.0,
		})
	}

	e.logger.Debug().
		Int("page_count", pageCount).
		Int("units", len(units)).
		Msg("Extracted PDF pages")

	return units, nil
}
