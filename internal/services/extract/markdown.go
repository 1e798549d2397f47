package extract

import (
	"context"
	"strings"

	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// MarkdownExtractor splits markdown documents into one unit per heading
// section. Content before the first heading becomes a "document" unit.
type MarkdownExtractor struct {
	md goldmark.Markdown
}

var _ interfaces.Extractor = (*MarkdownExtractor)(nil)

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{md: goldmark.New()}
}

func (e *MarkdownExtractor) Formats() []string {
	return []string{models.FormatMarkdown}
}

func (e *MarkdownExtractor) Extract(ctx context.Context, payload []byte) ([]models.ExtractedUnit, error) {
	root := e.md.Parser().Parse(gmtext.NewReader(payload))
	return e.sections(payload, root), nil
}

// section bounds one heading block: the heading line plus the byte range of
// the body that follows it.
type section struct {
	heading   string
	headStart int
	bodyStart int
}

func (e *MarkdownExtractor) sections(payload []byte, root ast.Node) []models.ExtractedUnit {
	var sections []section
	firstHeading := len(payload)

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		start := heading.Lines().At(0).Start
		stop := heading.Lines().At(heading.Lines().Len() - 1).Stop
		if start < firstHeading {
			firstHeading = start
		}
		sections = append(sections, section{
			heading:   string(heading.Text(payload)),
			headStart: start,
			bodyStart: stop,
		})
	}

	var units []models.ExtractedUnit

	if preamble := strings.TrimSpace(string(payload[:firstHeading])); preamble != "" {
		units = append(units, models.ExtractedUnit{
			Label:      "document",
			Text:       preamble,
			Confidence: 1.0,
		})
	}

	for i, s := range sections {
		bodyEnd := len(payload)
		if i+1 < len(sections) {
			bodyEnd = sections[i+1].headStart
		}
		// Heading line segments begin after the marker characters, so the
		// slice before the next heading can carry its "#" prefix. Strip it.
		body := strings.TrimRight(string(payload[s.bodyStart:bodyEnd]), "# \t\r\n")
		body = strings.TrimSpace(body)
		text := s.heading
		if body != "" {
			text = s.heading + "\n" + body
		}
		units = append(units, models.ExtractedUnit{
			Label:      "section:" + s.heading,
			Text:       text,
			Confidence: 1.0,
		})
	}

	return units
}
