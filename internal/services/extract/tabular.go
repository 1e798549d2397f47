package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/xuri/excelize/v2"
)

// TabularExtractor handles spreadsheet workbooks. Each sheet's data rows are
// grouped into units of at most rowsPerUnit rows, with every cell prefixed
// by its header so the text stays meaningful after chunking.
type TabularExtractor struct {
	rowsPerUnit int
}

var _ interfaces.Extractor = (*TabularExtractor)(nil)

func NewTabularExtractor(rowsPerUnit int) *TabularExtractor {
	if rowsPerUnit <= 0 {
		rowsPerUnit = 40
	}
	return &TabularExtractor{rowsPerUnit: rowsPerUnit}
}

func (e *TabularExtractor) Formats() []string {
	return []string{models.FormatXLSX}
}

func (e *TabularExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v: %w", err, models.ErrExtraction)
	}
	defer f.Close()

	var units []models.ExtractedUnit
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %v: %w", sheet, err, models.ErrExtraction)
		}
		if len(rows) < 2 {
			// Header-only or empty sheets carry nothing to index.
			continue
		}

		header := rows[0]
		data := rows[1:]
		for start := 0; start < len(data); start += e.rowsPerUnit {
			end := start + e.rowsPerUnit
			if end > len(data) {
				end = len(data)
			}
			text := renderRows(header, data[start:end])
			if text == "" {
				continue
			}
			// Worksheet row numbers are 1-indexed with the header on row 1.
			units = append(units, models.ExtractedUnit{
				Label:      fmt.Sprintf("sheet:%s:rows:%d-%d", sheet, start+2, end+1),
				Text:       text,
				Confidence: 1.0,
			})
		}
	}

	return units, nil
}

// renderRows writes each row as "Header: value | Header: value" so cell
// meaning survives without the grid.
func renderRows(header []string, rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		var cells []string
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			name := fmt.Sprintf("col%d", i+1)
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				name = strings.TrimSpace(header[i])
			}
			cells = append(cells, name+": "+cell)
		}
		if len(cells) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(cells, " | "))
	}
	return b.String()
}
