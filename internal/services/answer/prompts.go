package answer

import (
	"fmt"
	"strings"

	"github.com/ternarybob/responsum/internal/models"
)

const promptPreamble = `You are a support assistant. Answer the user's question using ONLY the context below.
Every statement in your answer must be grounded in the context. If the context does not contain
enough information to answer, say exactly: "Insufficient information in the available sources."
Reference sources by their bracketed labels where relevant. Be concise and practical.`

// buildAnswerPrompt renders the assembled hits verbatim, each under its
// provenance label, followed by the question.
func buildAnswerPrompt(question string, assembled *models.AssembledContext) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nCONTEXT:\n")

	for i := range assembled.Hits {
		hit := &assembled.Hits[i]
		b.WriteString(fmt.Sprintf("\n[%s]\n", sourceLabel(hit)))
		b.WriteString(hit.Text)
		b.WriteString("\n")
	}

	b.WriteString("\nQUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nANSWER:")
	return b.String()
}

// sourceLabel names a hit for citation: "doc_x page:3" for vector hits,
// "ticket rec_y: Title" for structured ones.
func sourceLabel(hit *models.RetrievalHit) string {
	if hit.Kind == models.SourceStructured {
		kind := hit.Label
		if kind == "" {
			kind = "record"
		}
		if hit.Title != "" {
			return fmt.Sprintf("%s %s: %s", kind, hit.ProvenanceID, hit.Title)
		}
		return fmt.Sprintf("%s %s", kind, hit.ProvenanceID)
	}
	if hit.Label != "" {
		return fmt.Sprintf("%s %s", hit.ProvenanceID, hit.Label)
	}
	return hit.ProvenanceID
}
