package models

import (
	"fmt"
	"time"
)

// Known document formats accepted by the ingestion pipeline. The extractor
// registry is the source of truth; these constants exist so callers and
// handlers don't scatter string literals.
const (
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
	FormatXLSX     = "xlsx"
	FormatPNG      = "png"
	FormatJPEG     = "jpg"
)

// SourceDocument represents an ingested file. It is immutable once written;
// re-ingesting the same file produces a new version that supersedes the old
// one, it never mutates prior chunks in place.
type SourceDocument struct {
	ID         string    `json:"id"` // doc_<uuid>, stable across re-ingestion of the same filename
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	Version    int       `json:"version"`
	ChunkCount int       `json:"chunk_count"`
	Indexable  bool      `json:"indexable"` // false when extraction yielded zero units (e.g. low-confidence OCR)
	ModelID    string    `json:"model_id"`  // embedding model used for this document's chunks
	IngestedAt time.Time `json:"ingested_at"`
}

// ExtractedUnit is one logical section of a source document: a page, a
// markdown section, a sheet row-range, or an OCR block. Confidence is 1.0
// for exact-text extractors and the recognizer's averaged block confidence
// for OCR paths.
type ExtractedUnit struct {
	DocumentID string  `json:"document_id"`
	Label      string  `json:"label"` // e.g. "page:3", "sheet:Printers:rows:2-4:cols:3", "ocr-block"
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Chunk is a bounded passage of text derived from one ExtractedUnit,
// carrying enough provenance to trace a retrieval hit back to its source.
type Chunk struct {
	DocumentID  string  `json:"document_id"`
	UnitLabel   string  `json:"unit_label"`
	Ordinal     int     `json:"ordinal"` // 0-based, monotonic within a unit
	Text        string  `json:"text"`
	StartOffset int     `json:"start_offset"` // character offsets into the unit text
	EndOffset   int     `json:"end_offset"`
	Format      string  `json:"format"`
	Confidence  float64 `json:"confidence"` // inherited extraction confidence
}

// Key returns the idempotency key for vector index upserts.
func (c *Chunk) Key() string {
	return fmt.Sprintf("%s|%s|%d", c.DocumentID, c.UnitLabel, c.Ordinal)
}

// EmbeddedChunk is a chunk plus its vector representation. Vectors from
// different embedding models are never comparable; ModelID partitions the
// index.
type EmbeddedChunk struct {
	Chunk
	Vector  []float32 `json:"vector"`
	ModelID string    `json:"model_id"`
}

// OCRBlock is a single recognized text region with the recognizer's own
// confidence in [0,1].
type OCRBlock struct {
	Text       string
	Confidence float64
}

// IngestResult is returned by the ingestion entry point.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}
