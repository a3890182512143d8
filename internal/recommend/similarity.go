// BookHub - Book Sharing Platform Backend
// Copyright 2026 alezhuq
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alezhuq/hub-back

package recommend

import "math"

// cosineDistances computes the pairwise cosine distance between user rows.
// The result is symmetric with a zero diagonal. A pair involving a zero
// row gets distance 1 (cosine similarity 0) instead of dividing by zero,
// so all-zero cold-start rows never produce NaN.
func cosineDistances(rows [][]float64) [][]float64 {
	n := len(rows)
	norms := make([]float64, n)
	for i, row := range rows {
		norms[i] = norm(row)
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d float64
			if norms[i] == 0 || norms[j] == 0 {
				d = 1
			} else {
				d = 1 - dot(rows[i], rows[j])/(norms[i]*norms[j])
				// Floating point can push the value a hair outside [0, 2].
				d = math.Max(0, math.Min(2, d))
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}
