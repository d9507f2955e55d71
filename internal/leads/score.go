// Package leads implements the lead scoring pipeline: a fixed weighted
// combination of externally supplied counters, ranked and persisted.
package leads

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/store"
)

// Weights for the three scoring dimensions. They sum to 1.0.
const (
	VelocityWeight  = 0.4
	AuthorityWeight = 0.3
	ImpactWeight    = 0.3
)

// Input is one lead with its raw counters, each expected in 0..100.
type Input struct {
	Name      string  `json:"name" yaml:"name"`
	URL       string  `json:"url" yaml:"url"`
	Velocity  float64 `json:"velocity" yaml:"velocity"`
	Authority float64 `json:"authority" yaml:"authority"`
	Impact    float64 `json:"impact" yaml:"impact"`
	Notes     string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Score computes the weighted score for one input.
func Score(in Input) float64 {
	return clamp(in.Velocity)*VelocityWeight +
		clamp(in.Authority)*AuthorityWeight +
		clamp(in.Impact)*ImpactWeight
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Rank scores all inputs and returns leads ordered by descending score.
func Rank(inputs []Input) []model.Lead {
	out := make([]model.Lead, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, model.Lead{
			Name:      in.Name,
			URL:       in.URL,
			Velocity:  clamp(in.Velocity),
			Authority: clamp(in.Authority),
			Impact:    clamp(in.Impact),
			Score:     Score(in),
			Notes:     in.Notes,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ScoreAndPersist ranks the inputs and upserts every lead. A failed upsert
// is logged and skipped; the ranked slice is returned regardless.
func ScoreAndPersist(ctx context.Context, st store.Store, inputs []Input) ([]model.Lead, error) {
	if len(inputs) == 0 {
		return nil, eris.New("leads: no inputs")
	}

	ranked := Rank(inputs)
	for _, lead := range ranked {
		if err := st.UpsertLead(ctx, lead); err != nil {
			zap.L().Warn("leads: persist failed, skipping",
				zap.String("url", lead.URL),
				zap.Error(err),
			)
		}
	}
	return ranked, nil
}
