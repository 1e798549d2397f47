package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// KeywordSearch is the structured retrieval path over ticket and
// knowledge-base records. The FTS5 index narrows the corpus to candidates;
// relevance is then the density of distinct query keywords matched in a
// candidate, with repeated matches contributing with diminishing weight and
// title matches weighted above body matches.
type KeywordSearch struct {
	records interfaces.RecordStorage
	index   interfaces.RecordSearchIndex
	logger  arbor.ILogger
}

var _ interfaces.StructuredSearch = (*KeywordSearch)(nil)

// candidateFloor is the minimum number of FTS candidates fetched for
// re-scoring regardless of the caller's limit.
const candidateFloor = 50

func NewKeywordSearch(records interfaces.RecordStorage, index interfaces.RecordSearchIndex, logger arbor.ILogger) *KeywordSearch {
	return &KeywordSearch{
		records: records,
		index:   index,
		logger:  logger,
	}
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "how": {},
	"to": {}, "what": {}, "why": {}, "when": {}, "does": {}, "it": {},
	"work": {}, "my": {}, "not": {}, "i": {}, "do": {}, "can": {},
	"on": {}, "in": {}, "of": {}, "for": {}, "and": {}, "with": {},
}

// SearchRelevant fetches full-text candidates for the query keywords,
// re-scores them and returns the top matches. Scores are in [0,1] and grow
// with each additional distinct keyword matched.
func (s *KeywordSearch) SearchRelevant(ctx context.Context, query string, limit int) ([]models.RetrievalHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keywords := ExtractKeywords(query)
	if len(keywords) == 0 || limit <= 0 {
		return nil, nil
	}

	candidateLimit := limit * 10
	if candidateLimit < candidateFloor {
		candidateLimit = candidateFloor
	}
	ids, err := s.index.MatchRecords(ctx, buildMatchQuery(keywords), candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query record index: %w", err)
	}

	var hits []models.RetrievalHit
	for _, id := range ids {
		rec, err := s.records.GetRecord(id)
		if err != nil {
			// The index is a rebuildable shadow; a stale entry is not fatal.
			s.logger.Warn().Err(err).Str("record_id", id).Msg("Indexed record missing from store")
			continue
		}
		score := scoreRecord(rec, keywords)
		if score <= 0 {
			continue
		}
		hits = append(hits, models.RetrievalHit{
			Kind:         models.SourceStructured,
			Score:        score,
			Text:         rec.Text,
			ProvenanceID: rec.ID,
			Title:        rec.Title,
			Label:        string(rec.Kind),
			Confidence:   1.0,
			URL:          rec.URL,
			Category:     rec.Category,
			UpdatedAt:    rec.UpdatedAt,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].UpdatedAt.After(hits[j].UpdatedAt)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug().
		Int("keywords", len(keywords)).
		Int("hits", len(hits)).
		Msg("Structured search completed")

	return hits, nil
}

// buildMatchQuery renders keywords as an FTS5 OR query of quoted prefix
// terms, so "printer" also surfaces records mentioning "printers". Quoting
// keeps record text from being parsed as FTS5 operators.
func buildMatchQuery(keywords []string) string {
	terms := make([]string, len(keywords))
	for i, kw := range keywords {
		terms[i] = `"` + strings.ReplaceAll(kw, `"`, `""`) + `"*`
	}
	return strings.Join(terms, " OR ")
}

// ExtractKeywords tokenizes a query and removes stopwords.
func ExtractKeywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var keywords []string
	for _, word := range fields {
		if _, ok := stopwords[word]; ok {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

// scoreRecord computes match density in [0,1]. Each keyword contributes its
// saturated frequency weight, title hits counting double, normalized by the
// keyword count so adding a matched keyword always raises the score.
func scoreRecord(rec *models.Record, keywords []string) float64 {
	title := strings.ToLower(rec.Title)
	body := strings.ToLower(rec.Text)

	var total float64
	for _, kw := range keywords {
		var w float64
		if n := strings.Count(body, kw); n > 0 {
			// Frequency saturates: the second and later occurrences add
			// half as much as the first.
			w = 0.5 + 0.5*saturate(n)
		}
		if strings.Contains(title, kw) {
			w += 1.0
		}
		if w > 2.0 {
			w = 2.0
		}
		total += w
	}

	return total / (2.0 * float64(len(keywords)))
}

func saturate(n int) float64 {
	return float64(n) / float64(n+1) * 2
}
