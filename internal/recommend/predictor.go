// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package recommend

// predictRow computes one user's predicted score for every book:
//
//	pred[b] = mean(row_u) + sum_v w[v]*(rows[v][b] - mean(row_v)) / sum_v |w[v]|
//
// where w is the caller-chosen weight vector over all users, the requester
// included. When every weight is zero the adjustment term is dropped and
// the prediction is the user's own row mean, never NaN.
func predictRow(rows [][]float64, weights []float64, u int) []float64 {
	if len(rows) == 0 || len(rows[u]) == 0 {
		return nil
	}

	means := make([]float64, len(rows))
	for v, row := range rows {
		means[v] = mean(row)
	}

	var denom float64
	for _, w := range weights {
		denom += abs(w)
	}

	pred := make([]float64, len(rows[u]))
	for b := range pred {
		pred[b] = means[u]
		if denom == 0 {
			continue
		}
		var num float64
		for v, row := range rows {
			num += weights[v] * (row[b] - means[v])
		}
		pred[b] += num / denom
	}
	return pred
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
