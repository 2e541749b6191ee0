// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import "math"

// safeRatio divides num by den, mapping zero denominators and
// non-finite results to 0. Every normalization and similarity call
// site goes through this so numeric failure behaves uniformly.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// safeCosine returns the cosine similarity of two equal-length vectors
// with zero-norm and non-finite inputs collapsing to 0.
func safeCosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	return safeRatio(dot, math.Sqrt(normA)*math.Sqrt(normB))
}

// clip01 clamps v into [0,1], mapping NaN and infinities to 0.
func clip01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round3 rounds to three decimal places, the precision exposed in
// scored results.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
