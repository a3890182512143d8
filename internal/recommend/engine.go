// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/alezhuq/hub-back/internal/logging"
	"github.com/alezhuq/hub-back/internal/metrics"
)

// Engine runs the recommendation pipeline against a Source. It is
// stateless between calls; every request sees the current store.
type Engine struct {
	source Source
	cfg    Config
}

// NewEngine creates an engine. An empty weight mode defaults to distance
// weighting.
func NewEngine(source Source, cfg Config) *Engine {
	if cfg.WeightMode == "" {
		cfg.WeightMode = WeightModeDistance
	}
	return &Engine{source: source, cfg: cfg}
}

// Recommend returns the ranked list of books for userID, best first, with
// books the user already liked removed. An empty catalog yields an empty
// list. The user must exist in the snapshot; cold users with no
// interactions are fine and rank against the population's row means.
func (e *Engine) Recommend(ctx context.Context, userID int64) ([]RankedBook, error) {
	start := time.Now()

	input, err := e.source.RecommendInput(ctx)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("source_error").Inc()
		return nil, fmt.Errorf("loading interaction snapshot: %w", err)
	}

	m := buildMatrix(input)
	metrics.RecommendMatrixUsers.Set(float64(len(m.userIDs)))
	metrics.RecommendMatrixBooks.Set(float64(len(m.bookIDs)))

	u, ok := m.userIndex[userID]
	if !ok {
		metrics.RecommendRequestsTotal.WithLabelValues("unknown_user").Inc()
		return nil, ErrUnknownUser
	}

	if len(m.bookIDs) == 0 {
		metrics.RecommendRequestsTotal.WithLabelValues("empty_catalog").Inc()
		return []RankedBook{}, nil
	}

	if interactions := nonZero(m.rows[u]); interactions < e.cfg.MinInteractions {
		metrics.RecommendColdStartTotal.Inc()
		logging.Ctx(ctx).Debug().
			Int64("user_id", userID).
			Int("interactions", interactions).
			Msg("Cold-start recommendation")
	}

	dist := cosineDistances(m.rows)
	weights := e.weightsFor(dist[u])
	pred := predictRow(m.rows, weights, u)
	ranked := rank(pred, m.bookIDs, m.liked[u])

	elapsed := time.Since(start)
	metrics.RecommendDuration.Observe(elapsed.Seconds())
	metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("users", len(m.userIDs)).
		Int("books", len(m.bookIDs)).
		Int("ranked", len(ranked)).
		Str("weight_mode", e.cfg.WeightMode).
		Dur("elapsed", elapsed).
		Msg("Recommendation computed")

	return ranked, nil
}

func nonZero(row []float64) int {
	var n int
	for _, v := range row {
		if v != 0 {
			n++
		}
	}
	return n
}

// weightsFor converts one user's distance row into neighbor weights per
// the configured mode. Distance mode uses the row as-is, which keeps the
// requester's own weight at zero; similarity mode inverts each entry, which
// gives the requester's own row full weight.
func (e *Engine) weightsFor(distRow []float64) []float64 {
	if e.cfg.WeightMode == WeightModeDistance {
		return distRow
	}
	w := make([]float64, len(distRow))
	for i, d := range distRow {
		w[i] = 1 - d
	}
	return w
}
