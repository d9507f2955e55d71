package seo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/pkg/anthropic"
)

const goodHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Acme Widgets: Industrial Widgets Since 1962</title>
	<meta name="description" content="Acme builds industrial widgets for manufacturing lines.">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<meta property="og:title" content="Acme Widgets">
	<link rel="canonical" href="https://acme.com/">
</head>
<body>
	<h1>Industrial Widgets</h1>
	<img src="/widget.png" alt="A widget">
	<a href="/products">Products</a>
	<a href="https://partner.example.com">Partner</a>
</body>
</html>`

func TestAnalyze_CleanPage(t *testing.T) {
	t.Parallel()

	audit, err := Analyze(model.Page{URL: "https://acme.com/", HTML: goodHTML})
	require.NoError(t, err)

	assert.Equal(t, "Acme Widgets: Industrial Widgets Since 1962", audit.Title)
	assert.Equal(t, 1, audit.H1Count)
	assert.Equal(t, 1, audit.ImagesTotal)
	assert.Zero(t, audit.ImagesNoAlt)
	assert.Equal(t, 1, audit.InternalLinks)
	assert.Equal(t, 1, audit.ExternalLinks)
	assert.True(t, audit.HasCanonical)
	assert.True(t, audit.HasOpenGraph)
	assert.True(t, audit.HasViewport)
	assert.Equal(t, 100, audit.Score)
	assert.Empty(t, audit.Findings)
}

func TestAnalyze_BarePage(t *testing.T) {
	t.Parallel()

	audit, err := Analyze(model.Page{
		URL:  "https://bare.com/",
		HTML: `<html><head></head><body><p>hello</p><img src="x.png"></body></html>`,
	})
	require.NoError(t, err)

	checks := make(map[string]Severity)
	for _, f := range audit.Findings {
		checks[f.Check] = f.Severity
	}

	assert.Equal(t, SeverityError, checks["title"])
	assert.Equal(t, SeverityError, checks["meta_description"])
	assert.Equal(t, SeverityError, checks["h1"])
	assert.Equal(t, SeverityWarning, checks["img_alt"])
	assert.Equal(t, SeverityWarning, checks["viewport"])
	assert.Equal(t, SeverityWarning, checks["internal_links"])
	assert.Equal(t, SeverityInfo, checks["canonical"])
	assert.Equal(t, SeverityInfo, checks["open_graph"])
	assert.Less(t, audit.Score, 50)
}

func TestAnalyze_TitleLengthBounds(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 80)
	audit, err := Analyze(model.Page{
		URL:  "https://a.com/",
		HTML: `<html><head><title>` + long + `</title></head><body><h1>h</h1><a href="/x">x</a></body></html>`,
	})
	require.NoError(t, err)

	var found bool
	for _, f := range audit.Findings {
		if f.Check == "title" {
			found = true
			assert.Equal(t, SeverityWarning, f.Severity)
			assert.Contains(t, f.Message, "80")
		}
	}
	assert.True(t, found)
}

func TestAnalyze_MultipleH1(t *testing.T) {
	t.Parallel()

	audit, err := Analyze(model.Page{
		URL:  "https://a.com/",
		HTML: `<html><body><h1>one</h1><h1>two</h1><h1>three</h1></body></html>`,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, audit.H1Count)
	var msg string
	for _, f := range audit.Findings {
		if f.Check == "h1" {
			msg = f.Message
		}
	}
	assert.Contains(t, msg, "3")
}

func TestAnalyze_NoHTML(t *testing.T) {
	t.Parallel()

	_, err := Analyze(model.Page{URL: "https://a.com/", Markdown: "# only markdown"})
	require.Error(t, err)
}

func TestScore_FloorsAtZero(t *testing.T) {
	t.Parallel()

	findings := make([]Finding, 10)
	for i := range findings {
		findings[i] = Finding{Severity: SeverityError}
	}
	assert.Zero(t, score(findings))
}

type mockAnthropicClient struct {
	reply string
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return &anthropic.MessageResponse{Text: m.reply}, nil
}

func TestAdvise(t *testing.T) {
	t.Parallel()

	engine := llm.NewEngine(&mockAnthropicClient{reply: "1. Add a meta description.\n2. Shorten the title."},
		config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929", MaxTokens: 512})

	audit := &Audit{URL: "https://a.com/", Score: 70, Findings: []Finding{
		{Check: "meta_description", Severity: SeverityError, Message: "no meta description"},
	}}

	require.NoError(t, Advise(context.Background(), engine, audit))
	assert.Contains(t, audit.Recommendations, "meta description")
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme.com", hostOf("https://acme.com/products?id=1"))
	assert.Equal(t, "acme.com", hostOf("http://www.acme.com"))
	assert.Equal(t, "acme.com", hostOf("https://acme.com#top"))
}
