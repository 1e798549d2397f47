package answer

import (
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/models"
)

// Assembler merges the two retrieval paths into one ranked, de-duplicated,
// budget-constrained context.
type Assembler struct {
	budgetChars int
	logger      arbor.ILogger
}

func NewAssembler(budgetChars int, logger arbor.ILogger) *Assembler {
	return &Assembler{
		budgetChars: budgetChars,
		logger:      logger,
	}
}

// Assemble ranks both hit lists by descending score, removes duplicates
// (same provenance id with overlapping spans, keeping the higher score) and
// accumulates hits until the character budget is reached. A hit that would
// exceed the budget is skipped whole, never truncated, and assembly stops
// there; everything excluded is recorded with its reason.
func (a *Assembler) Assemble(vectorHits, structuredHits []models.RetrievalHit) *models.AssembledContext {
	merged := make([]models.RetrievalHit, 0, len(vectorHits)+len(structuredHits))
	merged = append(merged, vectorHits...)
	merged = append(merged, structuredHits...)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		// Equal scores: structured records carry higher editorial trust.
		if merged[i].Kind != merged[j].Kind {
			return merged[i].Kind == models.SourceStructured
		}
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})

	ctx := &models.AssembledContext{}
	budgetExhausted := false
	for i := range merged {
		hit := merged[i]

		if dup := duplicateOf(&hit, ctx.Hits); dup {
			ctx.Dropped = append(ctx.Dropped, models.DroppedHit{Hit: hit, Reason: models.DropDuplicate})
			continue
		}
		if budgetExhausted || ctx.TotalChars+len(hit.Text) > a.budgetChars {
			budgetExhausted = true
			ctx.Dropped = append(ctx.Dropped, models.DroppedHit{Hit: hit, Reason: models.DropBudget})
			continue
		}

		ctx.Hits = append(ctx.Hits, hit)
		ctx.TotalChars += len(hit.Text)
	}

	a.logger.Debug().
		Int("kept", len(ctx.Hits)).
		Int("dropped", len(ctx.Dropped)).
		Int("total_chars", ctx.TotalChars).
		Msg("Assembled retrieval context")

	return ctx
}

// duplicateOf reports whether a hit overlaps any already-kept hit. Kept hits
// were ranked first, so the kept one is always the higher-scoring duplicate.
func duplicateOf(hit *models.RetrievalHit, kept []models.RetrievalHit) bool {
	for i := range kept {
		if hit.Overlaps(&kept[i]) {
			return true
		}
	}
	return false
}
