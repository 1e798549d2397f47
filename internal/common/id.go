package common

import (
	"github.com/google/uuid"
)

// documentNamespace seeds deterministic document ids so re-ingesting the
// same file yields the same id and replaces its prior chunks.
var documentNamespace = uuid.MustParse("6f1d2c4a-9b0e-4c8a-b7d3-2a1e5f60c9d8")

// NewDocumentID derives a stable document id from the origin filename.
// Format: doc_<uuid>
func NewDocumentID(filename string) string {
	return "doc_" + uuid.NewSHA1(documentNamespace, []byte(filename)).String()
}

// NewRecordID generates a unique ticket/KB record ID with the "rec_" prefix
func NewRecordID() string {
	return "rec_" + uuid.New().String()
}
