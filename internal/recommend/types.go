// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

// Package recommend implements BookHub's collaborative-filtering
// recommendation engine.
//
// The pipeline runs per request: interaction signals are flattened into a
// dense user-by-book matrix of composite scores, pairwise cosine distances
// between user rows weight a mean-centered prediction for the requesting
// user, and unliked books are returned ranked by predicted score.
package recommend

import (
	"context"
	"errors"
	"time"
)

// Weight modes for neighbor rows. Distance mode weights each neighbor by
// its cosine distance, so dissimilar users dominate; similarity mode weights
// by 1-distance. Distance is the historical default and stays the default
// so rankings remain reproducible; the mode is configurable rather than
// hard-coded.
const (
	WeightModeDistance   = "distance"
	WeightModeSimilarity = "similarity"
)

// ErrUnknownUser is returned when the requesting user is absent from the
// interaction snapshot.
var ErrUnknownUser = errors.New("user not in interaction snapshot")

// Config controls the engine.
type Config struct {
	// WeightMode is WeightModeDistance or WeightModeSimilarity.
	WeightMode string
	// MinInteractions marks users with fewer scored books as cold starts.
	// They still get a ranking; the threshold only drives observability.
	MinInteractions int
}

// Interaction is one user's signals for one book. Grade is nil when the
// user has not graded the book; boolean signals default to false and a zero
// ReadingTime contributes nothing.
type Interaction struct {
	UserID      int64
	BookID      int64
	Liked       bool
	Shared      bool
	Grade       *float64
	ReadingTime time.Duration
}

// Input is the snapshot the engine works from. UserIDs and BookIDs define
// the matrix axes; every listed user gets a row even without interactions,
// so new users receive popularity-shaped rankings instead of errors.
type Input struct {
	UserIDs      []int64
	BookIDs      []int64
	Interactions []Interaction
}

// Source supplies interaction snapshots. Implementations read the current
// store state; the engine never caches across calls.
type Source interface {
	RecommendInput(ctx context.Context) (*Input, error)
}

// RankedBook is one entry of a recommendation result, ordered best first.
type RankedBook struct {
	BookID int64   `json:"book_id"`
	Score  float64 `json:"score"`
}
