// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package recommend

import (
	"sort"
	"time"
)

// gradeScale is the ceiling of the grade and reading-time scales. A book
// that is liked, shared, graded 5, and holds the snapshot's longest reading
// time scores the composite maximum of 12.
const gradeScale = 5.0

// matrix is the dense interaction matrix. Row and column positions come
// from sorting the snapshot's user and book IDs ascending, so sparse or
// gappy ID spaces cost nothing and the same snapshot always produces the
// same layout.
type matrix struct {
	userIDs []int64
	bookIDs []int64

	userIndex map[int64]int
	bookIndex map[int64]int

	// rows[u][b] is the composite score of user u for book b.
	rows [][]float64

	// liked[u] is the set of book IDs user u has liked, used to exclude
	// already-liked books from that user's ranking.
	liked []map[int64]bool
}

// buildMatrix flattens the snapshot into composite scores. Every
// (user, book) cell exists; cells without signals stay 0. Reading time is
// scaled against the maximum observed across the whole snapshot, so the
// most-read interaction lands exactly on the top of the scale.
func buildMatrix(input *Input) *matrix {
	var maxReadingTime time.Duration
	for _, in := range input.Interactions {
		if in.ReadingTime > maxReadingTime {
			maxReadingTime = in.ReadingTime
		}
	}
	userIDs := sortedCopy(input.UserIDs)
	bookIDs := sortedCopy(input.BookIDs)

	m := &matrix{
		userIDs:   userIDs,
		bookIDs:   bookIDs,
		userIndex: indexOf(userIDs),
		bookIndex: indexOf(bookIDs),
		rows:      make([][]float64, len(userIDs)),
		liked:     make([]map[int64]bool, len(userIDs)),
	}
	for u := range m.rows {
		m.rows[u] = make([]float64, len(bookIDs))
		m.liked[u] = make(map[int64]bool)
	}

	for _, in := range input.Interactions {
		u, ok := m.userIndex[in.UserID]
		if !ok {
			continue
		}
		b, ok := m.bookIndex[in.BookID]
		if !ok {
			continue
		}
		m.rows[u][b] = composite(in, maxReadingTime)
		if in.Liked {
			m.liked[u][in.BookID] = true
		}
	}
	return m
}

// composite collapses one interaction into a single score:
// like (0 or 1) + share (0 or 1) + grade (0..5, 0 when absent)
// + reading time scaled onto 0..5.
func composite(in Interaction, maxReadingTime time.Duration) float64 {
	var score float64
	if in.Liked {
		score++
	}
	if in.Shared {
		score++
	}
	if in.Grade != nil {
		score += *in.Grade
	}
	score += scaleReadingTime(in.ReadingTime, maxReadingTime)
	return score
}

// scaleReadingTime maps a duration linearly onto the grade scale, with the
// observed maximum landing on gradeScale. A snapshot with no reading time
// anywhere scales everything to 0.
func scaleReadingTime(rt, maxReadingTime time.Duration) float64 {
	if rt <= 0 || maxReadingTime <= 0 {
		return 0
	}
	return rt.Seconds() / maxReadingTime.Seconds() * gradeScale
}

func sortedCopy(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func indexOf(ids []int64) map[int64]int {
	idx := make(map[int64]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}
