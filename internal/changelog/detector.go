// Package changelog implements seen/not-seen change detection over stored
// page snapshots, with a model pass deciding whether a diff matters.
package changelog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/llm"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/scrape"
	"github.com/sitescout/sitescout/internal/store"
)

// maxDiffChars caps how much diff text goes into the verdict prompt.
const maxDiffChars = 8000

// Detector fetches a page, compares it against the stored snapshot, and
// stores the fresh copy.
type Detector struct {
	chain  *scrape.Chain
	store  store.Store
	engine *llm.Engine
}

// NewDetector creates a Detector.
func NewDetector(chain *scrape.Chain, st store.Store, engine *llm.Engine) *Detector {
	return &Detector{chain: chain, store: st, engine: engine}
}

const verdictSystemPrompt = `You review diffs of web pages. Answer whether the change is meaningful to a reader tracking this page (new releases, pricing changes, content updates) as opposed to noise (timestamps, rotating banners, session tokens, ad markup). First line: yes or no. Second line: a one-sentence summary of the change.`

const verdictUserPrompt = `URL: %s

Unified diff of the page since the last snapshot:
%s`

// Check fetches url, diffs it against the stored snapshot, and saves the
// new snapshot. The model is consulted only when the deterministic diff is
// non-empty; a model failure degrades to "changed, meaningful".
func (d *Detector) Check(ctx context.Context, url string) (*model.ChangeVerdict, error) {
	result, err := d.chain.Scrape(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "changelog: fetch %s", url)
	}
	page := result.Page

	hash := ContentHash(page.Markdown)
	prev, err := d.store.GetSnapshot(ctx, url)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, eris.Wrapf(err, "changelog: load snapshot %s", url)
	}

	verdict := &model.ChangeVerdict{URL: url}

	switch {
	case prev == nil:
		verdict.FirstSeen = true
	case prev.ContentHash == hash:
		// Unchanged; nothing to classify.
	default:
		verdict.Changed = true
		verdict.Diff = Diff(prev.Body, page.Markdown)
		verdict.Meaningful, verdict.Summary = d.classify(ctx, url, verdict.Diff)
	}

	if err := d.store.SaveSnapshot(ctx, model.Snapshot{
		URL:         url,
		ContentHash: hash,
		Body:        page.Markdown,
		Title:       page.Title,
	}); err != nil {
		return nil, eris.Wrapf(err, "changelog: save snapshot %s", url)
	}

	return verdict, nil
}

// classify asks the model whether the diff matters. Failures degrade to
// meaningful so a flaky API never suppresses a real change.
func (d *Detector) classify(ctx context.Context, url, diff string) (bool, string) {
	if d.engine == nil {
		return true, ""
	}

	prompt := fmt.Sprintf(verdictUserPrompt, url, truncate(diff, maxDiffChars))
	meaningful, summary, err := d.engine.YesNo(ctx, verdictSystemPrompt, prompt, true)
	if err != nil {
		zap.L().Warn("changelog: verdict call failed, assuming meaningful",
			zap.String("url", url),
			zap.Error(err),
		)
		return true, ""
	}
	return meaningful, summary
}

// ContentHash returns the hex sha256 of normalized content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// Diff returns a minimal unified-style diff of two texts: lines only in the
// old text prefixed with "-", lines only in the new text prefixed with "+".
// Order within each side is preserved.
func Diff(oldText, newText string) string {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	oldSet := make(map[string]int, len(oldLines))
	for _, l := range oldLines {
		oldSet[l]++
	}
	newSet := make(map[string]int, len(newLines))
	for _, l := range newLines {
		newSet[l]++
	}

	var b strings.Builder
	for _, l := range oldLines {
		if newSet[l] > 0 {
			newSet[l]--
			continue
		}
		if strings.TrimSpace(l) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for _, l := range newLines {
		if oldSet[l] > 0 {
			oldSet[l]--
			continue
		}
		if strings.TrimSpace(l) == "" {
			continue
		}
		b.WriteString("+ ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
