// Package pii flags personal-data and tracker signals in scraped text.
// It is keyword and pattern matching, nothing more.
package pii

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category groups related signals.
type Category string

const (
	CategoryContact   Category = "contact"
	CategoryIdentity  Category = "identity"
	CategoryFinancial Category = "financial"
	CategoryTracker   Category = "tracker"
)

// Signal is one detected indicator.
type Signal struct {
	Category Category `json:"category"`
	Kind     string   `json:"kind"`
	Count    int      `json:"count"`
	Sample   string   `json:"sample,omitempty"`
}

// Report is the classification result for one page.
type Report struct {
	URL     string   `json:"url"`
	Signals []Signal `json:"signals"`
}

// HasPII reports whether any non-tracker signal was found.
func (r *Report) HasPII() bool {
	for _, s := range r.Signals {
		if s.Category != CategoryTracker {
			return true
		}
	}
	return false
}

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d{1,2}[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ibanRe  = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)
)

// trackerKeywords are substrings of common analytics and ad-tech loaders.
var trackerKeywords = map[string]string{
	"googletagmanager":  "google_tag_manager",
	"google-analytics":  "google_analytics",
	"gtag(":             "google_analytics",
	"facebook.net/en_us/fbevents": "meta_pixel",
	"fbq(":              "meta_pixel",
	"hotjar":            "hotjar",
	"segment.com":       "segment",
	"mixpanel":          "mixpanel",
	"doubleclick":       "doubleclick",
	"clarity.ms":        "ms_clarity",
}

// identityKeywords signal forms collecting identity data.
var identityKeywords = map[string]string{
	"social security": "ssn_mention",
	"date of birth":   "dob_mention",
	"passport number": "passport_mention",
	"driver's license": "license_mention",
}

// Classify scans content for PII and tracker signals. Content is NFKC
// normalized first so fullwidth and compatibility forms still match.
func Classify(url, content string) *Report {
	text := norm.NFKC.String(content)
	lower := strings.ToLower(text)

	report := &Report{URL: url}

	addMatches := func(cat Category, kind string, re *regexp.Regexp) {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			return
		}
		report.Signals = append(report.Signals, Signal{
			Category: cat,
			Kind:     kind,
			Count:    len(matches),
			Sample:   redact(matches[0]),
		})
	}

	addMatches(CategoryContact, "email", emailRe)
	addMatches(CategoryContact, "phone", phoneRe)
	addMatches(CategoryIdentity, "ssn", ssnRe)
	addMatches(CategoryFinancial, "iban", ibanRe)

	addKeywords := func(cat Category, keywords map[string]string) {
		counts := make(map[string]int)
		for needle, kind := range keywords {
			if n := strings.Count(lower, needle); n > 0 {
				counts[kind] += n
			}
		}
		for kind, n := range counts {
			report.Signals = append(report.Signals, Signal{Category: cat, Kind: kind, Count: n})
		}
	}

	addKeywords(CategoryTracker, trackerKeywords)
	addKeywords(CategoryIdentity, identityKeywords)

	return report
}

// redact keeps enough of a sample to recognize it without reproducing it.
func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
