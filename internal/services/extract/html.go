package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// HTMLExtractor converts HTML documents to markdown and delegates section
// splitting to the markdown extractor. Script and style content is stripped
// before conversion.
type HTMLExtractor struct {
	markdown *MarkdownExtractor
	logger   arbor.ILogger
}

var _ interfaces.Extractor = (*HTMLExtractor)(nil)

func NewHTMLExtractor(markdown *MarkdownExtractor, logger arbor.ILogger) *HTMLExtractor {
	return &HTMLExtractor{
		markdown: markdown,
		logger:   logger,
	}
}

func (e *HTMLExtractor) Formats() []string {
	return []string{models.FormatHTML}
}

func (e *HTMLExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", models.ErrExtraction)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript").Remove()

	html, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(html) == "" {
		if html, err = doc.Html(); err != nil {
			return nil, fmt.Errorf("failed to serialize HTML: %w", models.ErrExtraction)
		}
	}

	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(html)
	if err != nil {
		e.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using text fallback")
		converted = doc.Text()
	}
	if strings.TrimSpace(converted) == "" {
		return nil, nil
	}

	units, err := e.markdown.Extract(ctx, []byte(converted))
	if err != nil {
		return nil, err
	}

	// The page title names units that carry no heading of their own.
	if title != "" {
		for i := range units {
			if units[i].Label == "document" {
				units[i].Label = "title:" + title
			}
		}
	}
	return units, nil
}
