package models

import "time"

// RecordKind distinguishes ticket records from knowledge-base articles in
// the structured store.
type RecordKind string

const (
	RecordTicket RecordKind = "ticket"
	RecordKB     RecordKind = "kb"
)

// Record is a ticket or knowledge-base article held in the structured
// store. This subsystem only reads records; writes come from the ticketing
// system proper.
type Record struct {
	ID        string     `json:"id"`
	Kind      RecordKind `json:"kind"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	Category  string     `json:"category,omitempty"`
	Status    string     `json:"status,omitempty"`
	URL       string     `json:"url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RecordStats summarizes the structured store for the status endpoint.
type RecordStats struct {
	TotalRecords int            `json:"total_records"`
	ByKind       map[string]int `json:"by_kind"`
}
