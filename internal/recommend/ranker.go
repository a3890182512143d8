// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package recommend

import "sort"

// rank orders every book the user has not liked by predicted score,
// highest first. Ties break on ascending book ID so equal scores still
// produce a stable, reproducible order. The whole remainder is returned;
// truncation is the caller's concern.
func rank(pred []float64, bookIDs []int64, liked map[int64]bool) []RankedBook {
	out := make([]RankedBook, 0, len(bookIDs))
	for b, id := range bookIDs {
		if liked[id] {
			continue
		}
		out = append(out, RankedBook{BookID: id, Score: pred[b]})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].BookID < out[j].BookID
	})
	return out
}
