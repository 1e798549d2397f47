package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownExtractSections(t *testing.T) {
	e := NewMarkdownExtractor()

	payload := []byte(`Intro paragraph before any heading.

# Setup

Install the agent and restart.

## Troubleshooting

Check the service logs first.
`)

	units, err := e.Extract(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, "document", units[0].Label)
	assert.Contains(t, units[0].Text, "Intro paragraph")

	assert.Equal(t, "section:Setup", units[1].Label)
	assert.Contains(t, units[1].Text, "Install the agent")
	assert.NotContains(t, units[1].Text, "service logs")

	assert.Equal(t, "section:Troubleshooting", units[2].Label)
	assert.Contains(t, units[2].Text, "service logs")

	for _, u := range units {
		assert.Equal(t, 1.0, u.Confidence)
	}
}

func TestMarkdownExtractNoHeadings(t *testing.T) {
	e := NewMarkdownExtractor()

	units, err := e.Extract(context.Background(), []byte("Just a plain paragraph.\n\nAnd another one."))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "document", units[0].Label)
}

func TestMarkdownExtractEmpty(t *testing.T) {
	e := NewMarkdownExtractor()

	units, err := e.Extract(context.Background(), []byte("   \n"))
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestTextExtractWholeDocument(t *testing.T) {
	e := NewTextExtractor()

	units, err := e.Extract(context.Background(), []byte("  VPN setup instructions.  "))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "document", units[0].Label)
	assert.Equal(t, "VPN setup instructions.", units[0].Text)
	assert.Equal(t, 1.0, units[0].Confidence)
}

func TestTextExtractEmpty(t *testing.T) {
	e := NewTextExtractor()

	units, err := e.Extract(context.Background(), []byte("   "))
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestHTMLExtractConvertsAndLabels(t *testing.T) {
	logger := testLogger()
	e := NewHTMLExtractor(NewMarkdownExtractor(), logger)

	payload := []byte(`<html><head><title>Printer FAQ</title>
<script>ignored()</script></head>
<body><p>General notes.</p><h1>Paper jams</h1><p>Open the rear tray.</p></body></html>`)

	units, err := e.Extract(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "title:Printer FAQ", units[0].Label)
	assert.Contains(t, units[0].Text, "General notes")
	assert.NotContains(t, units[0].Text, "ignored")

	assert.Equal(t, "section:Paper jams", units[1].Label)
	assert.Contains(t, units[1].Text, "rear tray")
}
