// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"math"
	"testing"
)

func TestSafeRatio(t *testing.T) {
	tests := []struct {
		name     string
		num, den float64
		want     float64
	}{
		{"normal division", 1, 2, 0.5},
		{"zero denominator", 5, 0, 0},
		{"zero numerator", 0, 3, 0},
		{"nan numerator", math.NaN(), 2, 0},
		{"inf numerator", math.Inf(1), 2, 0},
		{"negative", -1, 2, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safeRatio(tt.num, tt.den); got != tt.want {
				t.Errorf("safeRatio(%v, %v) = %v, want %v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestSafeCosine(t *testing.T) {
	if got := safeCosine([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-12 {
		t.Errorf("identical vectors should score 1, got %v", got)
	}
	if got := safeCosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %v", got)
	}
	if got := safeCosine([]float64{1, 0}, []float64{-1, 0}); math.Abs(got+1) > 1e-12 {
		t.Errorf("opposite vectors should score -1, got %v", got)
	}
	if got := safeCosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Errorf("zero-norm vector should score 0, got %v", got)
	}
	if got := safeCosine([]float64{1}, []float64{1, 2}); got != 0 {
		t.Errorf("length mismatch should score 0, got %v", got)
	}
	if got := safeCosine(nil, nil); got != 0 {
		t.Errorf("empty vectors should score 0, got %v", got)
	}
}

func TestClip01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{0, 0},
		{1, 1},
		{-0.2, 0},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := clip01(tt.in); got != tt.want {
			t.Errorf("clip01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRound3(t *testing.T) {
	if got := round3(0.12345); got != 0.123 {
		t.Errorf("round3(0.12345) = %v", got)
	}
	if got := round3(0.9995); got != 1.0 {
		t.Errorf("round3(0.9995) = %v", got)
	}
	if got := round3(0.0004); got != 0 {
		t.Errorf("round3(0.0004) = %v", got)
	}
}
