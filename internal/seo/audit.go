// Package seo runs a deterministic on-page audit over a fetched document,
// with an optional model pass for prioritized recommendations.
package seo

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/model"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single audit observation.
type Finding struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Audit is the full result for one page.
type Audit struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	TitleLength     int       `json:"title_length"`
	MetaDescription string    `json:"meta_description"`
	H1Count         int       `json:"h1_count"`
	ImagesTotal     int       `json:"images_total"`
	ImagesNoAlt     int       `json:"images_no_alt"`
	InternalLinks   int       `json:"internal_links"`
	ExternalLinks   int       `json:"external_links"`
	HasCanonical    bool      `json:"has_canonical"`
	HasOpenGraph    bool      `json:"has_open_graph"`
	HasViewport     bool      `json:"has_viewport"`
	Score           int       `json:"score"`
	Findings        []Finding `json:"findings"`
	Recommendations string    `json:"recommendations,omitempty"`
}

// severity penalties applied per finding when computing the score.
const (
	errorPenalty   = 15
	warningPenalty = 7
	infoPenalty    = 2
)

// Analyze parses the page HTML and evaluates the on-page checks.
func Analyze(page model.Page) (*Audit, error) {
	if strings.TrimSpace(page.HTML) == "" {
		return nil, eris.Errorf("seo: no html for %s", page.URL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, eris.Wrap(err, "seo: parse html")
	}

	a := &Audit{URL: page.URL}

	a.Title = strings.TrimSpace(doc.Find("title").First().Text())
	a.TitleLength = len(a.Title)
	a.MetaDescription, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	a.MetaDescription = strings.TrimSpace(a.MetaDescription)
	a.H1Count = doc.Find("h1").Length()
	a.HasCanonical = doc.Find(`link[rel="canonical"]`).Length() > 0
	a.HasOpenGraph = doc.Find(`meta[property^="og:"]`).Length() > 0
	a.HasViewport = doc.Find(`meta[name="viewport"]`).Length() > 0

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		a.ImagesTotal++
		if alt, ok := sel.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			a.ImagesNoAlt++
		}
	})

	host := hostOf(page.URL)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case href == "" || strings.HasPrefix(href, "#"),
			strings.HasPrefix(href, "mailto:"), strings.HasPrefix(href, "tel:"):
		case strings.HasPrefix(href, "http") && host != "" && !strings.Contains(href, host):
			a.ExternalLinks++
		default:
			a.InternalLinks++
		}
	})

	a.Findings = evaluate(a)
	a.Score = score(a.Findings)
	return a, nil
}

func evaluate(a *Audit) []Finding {
	var f []Finding

	add := func(check string, sev Severity, msg string) {
		f = append(f, Finding{Check: check, Severity: sev, Message: msg})
	}

	switch {
	case a.Title == "":
		add("title", SeverityError, "page has no <title>")
	case a.TitleLength < 10:
		add("title", SeverityWarning, fmt.Sprintf("title is only %d characters", a.TitleLength))
	case a.TitleLength > 60:
		add("title", SeverityWarning, fmt.Sprintf("title is %d characters; search engines truncate after ~60", a.TitleLength))
	}

	switch {
	case a.MetaDescription == "":
		add("meta_description", SeverityError, "no meta description")
	case len(a.MetaDescription) > 160:
		add("meta_description", SeverityWarning, fmt.Sprintf("meta description is %d characters; keep it under 160", len(a.MetaDescription)))
	}

	switch a.H1Count {
	case 0:
		add("h1", SeverityError, "no <h1> heading")
	case 1:
		// Exactly one is what we want.
	default:
		add("h1", SeverityWarning, fmt.Sprintf("%d <h1> headings; use one", a.H1Count))
	}

	if a.ImagesNoAlt > 0 {
		add("img_alt", SeverityWarning, fmt.Sprintf("%d of %d images missing alt text", a.ImagesNoAlt, a.ImagesTotal))
	}
	if !a.HasCanonical {
		add("canonical", SeverityInfo, "no canonical link")
	}
	if !a.HasOpenGraph {
		add("open_graph", SeverityInfo, "no Open Graph tags")
	}
	if !a.HasViewport {
		add("viewport", SeverityWarning, "no viewport meta tag")
	}
	if a.InternalLinks == 0 {
		add("internal_links", SeverityWarning, "no internal links on page")
	}

	return f
}

func score(findings []Finding) int {
	s := 100
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s -= errorPenalty
		case SeverityWarning:
			s -= warningPenalty
		case SeverityInfo:
			s -= infoPenalty
		}
	}
	if s < 0 {
		s = 0
	}
	return s
}

const adviseSystemPrompt = `You are an SEO consultant. Given an audit of a single page, reply with a short prioritized list (markdown) of the three most impactful fixes. Be concrete; reference the audit numbers.`

// Advise asks the model for prioritized recommendations and attaches them
// to the audit.
func Advise(ctx context.Context, engine *llm.Engine, a *Audit) error {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\nScore: %d/100\nTitle (%d chars): %s\nMeta description (%d chars): %s\nH1 count: %d\nImages without alt: %d/%d\nInternal links: %d, external: %d\n\nFindings:\n",
		a.URL, a.Score, a.TitleLength, a.Title, len(a.MetaDescription), a.MetaDescription,
		a.H1Count, a.ImagesNoAlt, a.ImagesTotal, a.InternalLinks, a.ExternalLinks)
	for _, f := range a.Findings {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", f.Severity, f.Check, f.Message)
	}

	rec, err := engine.Prompt(ctx, adviseSystemPrompt, b.String(), "seo_advise")
	if err != nil {
		return eris.Wrap(err, "seo: advise")
	}
	a.Recommendations = rec
	return nil
}

func hostOf(rawURL string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}
