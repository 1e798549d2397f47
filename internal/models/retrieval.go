package models

import "time"

// SourceKind identifies which retrieval path produced a hit.
type SourceKind string

const (
	// SourceVector marks hits from the semantic vector index
	SourceVector SourceKind = "vector"
	// SourceStructured marks hits from the ticket/KB keyword search
	SourceStructured SourceKind = "structured"
)

// RetrievalHit is a candidate passage from either retrieval path with a
// normalized relevance score in [0,1] and provenance back to its origin.
type RetrievalHit struct {
	Kind         SourceKind `json:"kind"`
	Score        float64    `json:"score"`
	Text         string     `json:"text"`
	ProvenanceID string     `json:"provenance_id"` // document, ticket or KB article id
	Title        string     `json:"title"`
	URL          string     `json:"url,omitempty"`
	Label        string     `json:"label,omitempty"`    // structural label for vector hits
	Category     string     `json:"category,omitempty"` // ticket/KB category for structured hits
	Confidence   float64    `json:"confidence"`         // extraction confidence (1.0 for structured hits)
	StartOffset  int        `json:"start_offset"`
	EndOffset    int        `json:"end_offset"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Overlaps reports whether two hits resolve to the same unit of the same
// provenance id with overlapping text spans, the assembler's duplicate
// criterion. Chunk offsets restart at zero per unit, so hits with different
// labels never overlap even when their spans coincide. Hits without span
// information (EndOffset 0) are treated as covering the whole unit.
func (h *RetrievalHit) Overlaps(other *RetrievalHit) bool {
	if h.ProvenanceID != other.ProvenanceID || h.Label != other.Label {
		return false
	}
	if h.EndOffset == 0 || other.EndOffset == 0 {
		return true
	}
	return h.StartOffset < other.EndOffset && other.StartOffset < h.EndOffset
}

// DropReason records why the assembler excluded a hit.
type DropReason string

const (
	DropBudget    DropReason = "budget"
	DropDuplicate DropReason = "duplicate"
)

// DroppedHit pairs an excluded hit with the reason it was excluded.
type DroppedHit struct {
	Hit    RetrievalHit `json:"hit"`
	Reason DropReason   `json:"reason"`
}

// AssembledContext is the ranked, de-duplicated, budget-constrained context
// handed to the answer synthesizer.
type AssembledContext struct {
	Hits       []RetrievalHit `json:"hits"`
	Dropped    []DroppedHit   `json:"dropped,omitempty"`
	TotalChars int            `json:"total_chars"`
}

// Empty reports whether no hits survived assembly.
func (a *AssembledContext) Empty() bool {
	return a == nil || len(a.Hits) == 0
}

// AnswerResult is the transient, request-scoped payload returned by the
// query entry point. It is never persisted by this subsystem.
type AnswerResult struct {
	Question          string         `json:"question"`
	Answer            string         `json:"answer"`
	Sources           []RetrievalHit `json:"sources"`
	Confidence        float64        `json:"confidence"`
	SuggestedActions  []string       `json:"suggested_actions,omitempty"`
	SuggestedCategory string         `json:"suggested_category,omitempty"`
}
