// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// smallCatalogRankCap bounds the effective rank so tiny catalogs do
// not produce over-parameterized, unstable factorizations.
const smallCatalogRankCap = 3

// minNonZeroCells is the minimum training signal required to fit.
const minNonZeroCells = 4

// epsilon guards the multiplicative update denominators.
const epsilon = 1e-10

// factorization holds the fitted non-negative factors of the
// interaction matrix. When Available is false all collaborative
// scoring yields 0 and similar-donor queries return empty results.
type factorization struct {
	available bool

	rank       int
	iterations int

	// reconstructionError is the mean squared error between the scaled
	// matrix and W*H after the final iteration.
	reconstructionError float64

	w *mat.Dense // donors x rank
	h *mat.Dense // rank x campaigns

	// trainMax is the largest cell of the raw interaction matrix, used
	// to normalize predicted scores. The factors are fit on the scaled
	// matrix, but predictions normalize against the raw maximum.
	trainMax float64
}

// unavailableFactorization is the explicit "no collaborative signal"
// state.
func unavailableFactorization() *factorization {
	return &factorization{}
}

// fitFactorization fits W*H to the per-column min-max scaled
// interaction matrix using seeded multiplicative updates.
//
// Failure policy: fewer than 4 non-zero cells refuses to fit
// (ErrInsufficientSignal); an all-zero donor factor matrix or a
// non-finite reconstruction error after fitting reports
// ErrNumericDegeneracy. Both leave the result unavailable so callers
// fall back to content-based scoring.
func fitFactorization(cfg FactorizationConfig, m *mat.Dense) (*factorization, error) {
	if m == nil {
		return unavailableFactorization(), ErrInsufficientSignal
	}
	if countNonZero(m) < minNonZeroCells {
		return unavailableFactorization(), ErrInsufficientSignal
	}

	rows, cols := m.Dims()
	scaled := scaleColumns(m)

	rank := cfg.Rank
	if rows < rank {
		rank = rows
	}
	if cols < rank {
		rank = cols
	}
	if rank > smallCatalogRankCap {
		rank = smallCatalogRankCap
	}
	if rank < 1 {
		rank = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	w := randomDense(rng, rows, rank)
	h := randomDense(rng, rank, cols)

	var (
		prevErr    = math.Inf(1)
		iterations int
	)
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		iterations = iter + 1
		updateH(scaled, w, h)
		updateW(scaled, w, h)

		curErr := reconstructionMSE(scaled, w, h)
		if math.Abs(prevErr-curErr) < cfg.Tolerance {
			prevErr = curErr
			break
		}
		prevErr = curErr
	}

	finalErr := reconstructionMSE(scaled, w, h)
	if math.IsNaN(finalErr) || math.IsInf(finalErr, 0) {
		return unavailableFactorization(), ErrNumericDegeneracy
	}
	if denseAllZero(w) {
		return unavailableFactorization(), ErrNumericDegeneracy
	}

	return &factorization{
		available:           true,
		rank:                rank,
		iterations:          iterations,
		reconstructionError: finalErr,
		w:                   w,
		h:                   h,
		trainMax:            denseMax(m),
	}, nil
}

// donorFactor returns the latent vector for donor row i.
func (f *factorization) donorFactor(i int) []float64 {
	return f.w.RawRowView(i)
}

// campaignFactor returns the latent vector for campaign column j.
func (f *factorization) campaignFactor(j int) []float64 {
	return mat.Col(nil, j, f.h)
}

// donorCount returns the number of donor rows in the fitted model.
func (f *factorization) donorCount() int {
	if !f.available {
		return 0
	}
	rows, _ := f.w.Dims()
	return rows
}

// predict scores donor i against campaign j: latent dot product
// normalized by the raw interaction matrix maximum, clipped into
// [0,1].
func (f *factorization) predict(i, j int) float64 {
	var dot float64
	row := f.donorFactor(i)
	for k, v := range row {
		dot += v * f.h.At(k, j)
	}
	return clip01(safeRatio(dot, f.trainMax))
}

// updateH applies the multiplicative update for H:
// H <- H .* (W'V) ./ (W'WH + eps)
func updateH(v, w, h *mat.Dense) {
	var wtv, wtw, wtwh mat.Dense
	wtv.Mul(w.T(), v)
	wtw.Mul(w.T(), w)
	wtwh.Mul(&wtw, h)

	rows, cols := h.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			h.Set(i, j, h.At(i, j)*wtv.At(i, j)/(wtwh.At(i, j)+epsilon))
		}
	}
}

// updateW applies the multiplicative update for W:
// W <- W .* (VH') ./ (WHH' + eps)
func updateW(v, w, h *mat.Dense) {
	var vht, hht, whht mat.Dense
	vht.Mul(v, h.T())
	hht.Mul(h, h.T())
	whht.Mul(w, &hht)

	rows, cols := w.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w.Set(i, j, w.At(i, j)*vht.At(i, j)/(whht.At(i, j)+epsilon))
		}
	}
}

// reconstructionMSE computes mean((V - WH)^2).
func reconstructionMSE(v, w, h *mat.Dense) float64 {
	var wh mat.Dense
	wh.Mul(w, h)

	rows, cols := v.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d := v.At(i, j) - wh.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(rows*cols)
}

// scaleColumns min-max scales each column into [0,1]. Constant columns
// collapse to 0.
func scaleColumns(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < rows; i++ {
			v := m.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, safeRatio(m.At(i, j)-lo, hi-lo))
		}
	}
	return out
}

// randomDense fills a matrix with uniform values in [0,1).
func randomDense(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// denseAllZero reports whether every cell is zero.
func denseAllZero(m *mat.Dense) bool {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

// denseMax returns the largest cell value.
func denseMax(m *mat.Dense) float64 {
	rows, cols := m.Dims()
	maxV := math.Inf(-1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); v > maxV {
				maxV = v
			}
		}
	}
	return maxV
}
