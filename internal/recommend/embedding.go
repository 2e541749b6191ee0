// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/nexafund/recommender/internal/models"
)

// embeddings holds the L2-normalized donor and campaign vectors built
// from one shared vocabulary. Row order matches the donor and campaign
// slices the set was built from; that alignment is relied on by the
// interaction matrix and every scorer.
type embeddings struct {
	vocab    *vectorizer
	dim      int
	donor    *mat.Dense // donors x dim
	campaign *mat.Dense // campaigns x dim
}

// buildEmbeddings constructs the shared embedding space.
//
// Donor documents are name+bio with isVerified as the numeric block;
// campaign documents are title+description with the five funding
// numerics. The vocabulary is fitted over the union of both document
// sets so cross-entity cosine similarity is meaningful. Numeric blocks
// are min-max scaled per field within each entity set and zero-padded
// to a common width, then each concatenated row is L2-normalized.
func buildEmbeddings(cfg EmbeddingConfig, donors []models.Donor, campaigns []models.Campaign) *embeddings {
	donorDocs := make([]string, len(donors))
	for i, d := range donors {
		donorDocs[i] = strings.TrimSpace(d.Name + " " + d.Bio)
	}
	campaignDocs := make([]string, len(campaigns))
	for i, c := range campaigns {
		campaignDocs[i] = strings.TrimSpace(c.Title + " " + c.Description)
	}

	corpus := make([]string, 0, len(donorDocs)+len(campaignDocs))
	corpus = append(corpus, donorDocs...)
	corpus = append(corpus, campaignDocs...)
	vocab := newVectorizer(cfg, corpus)

	donorNumeric := make([][]float64, len(donors))
	for i, d := range donors {
		verified := 0.0
		if d.IsVerified {
			verified = 1.0
		}
		donorNumeric[i] = []float64{verified}
	}
	campaignNumeric := make([][]float64, len(campaigns))
	for i, c := range campaigns {
		campaignNumeric[i] = []float64{
			sanitize(c.TargetAmount),
			sanitize(c.CurrentAmount),
			sanitize(c.EscrowAmount),
			sanitize(c.ReleasedAmount),
			sanitize(c.RiskScore),
		}
	}

	donorNumeric = minMaxScale(donorNumeric)
	campaignNumeric = minMaxScale(campaignNumeric)

	numericWidth := max(numericCols(donorNumeric), numericCols(campaignNumeric))
	if numericWidth == 0 {
		// Keep a zero column so downstream shapes stay predictable.
		numericWidth = 1
	}

	dim := vocab.Size() + numericWidth
	e := &embeddings{
		vocab:    vocab,
		dim:      dim,
		donor:    assemble(vocab, donorDocs, donorNumeric, numericWidth),
		campaign: assemble(vocab, campaignDocs, campaignNumeric, numericWidth),
	}
	return e
}

// donorVector returns the embedding row for donor index i.
func (e *embeddings) donorVector(i int) []float64 {
	return e.donor.RawRowView(i)
}

// campaignVector returns the embedding row for campaign index j.
func (e *embeddings) campaignVector(j int) []float64 {
	return e.campaign.RawRowView(j)
}

// assemble transforms documents, appends the padded numeric block and
// L2-normalizes each row. A zero-norm row stays the zero vector.
func assemble(vocab *vectorizer, docs []string, numeric [][]float64, numericWidth int) *mat.Dense {
	dim := vocab.Size() + numericWidth
	if len(docs) == 0 {
		// mat.NewDense panics on zero rows; keep a 1-row placeholder
		// that is never indexed because the entity set is empty.
		return mat.NewDense(1, dim, nil)
	}

	m := mat.NewDense(len(docs), dim, nil)
	for i, doc := range docs {
		row := make([]float64, 0, dim)
		row = append(row, vocab.Transform(doc)...)

		var nums []float64
		if i < len(numeric) {
			nums = numeric[i]
		}
		for j := 0; j < numericWidth; j++ {
			if j < len(nums) {
				row = append(row, nums[j])
			} else {
				row = append(row, 0)
			}
		}

		var norm float64
		for _, v := range row {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}

		m.SetRow(i, row)
	}
	return m
}

// minMaxScale scales each numeric column to [0,1] across the entity
// set. Constant columns collapse to 0.
func minMaxScale(rows [][]float64) [][]float64 {
	cols := numericCols(rows)
	if cols == 0 {
		return rows
	}

	mins := make([]float64, cols)
	maxs := make([]float64, cols)
	for j := 0; j < cols; j++ {
		mins[j] = math.Inf(1)
		maxs[j] = math.Inf(-1)
	}
	for _, row := range rows {
		for j, v := range row {
			if v < mins[j] {
				mins[j] = v
			}
			if v > maxs[j] {
				maxs[j] = v
			}
		}
	}

	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		out := make([]float64, len(row))
		for j, v := range row {
			out[j] = safeRatio(v-mins[j], maxs[j]-mins[j])
		}
		scaled[i] = out
	}
	return scaled
}

// numericCols returns the widest row length.
func numericCols(rows [][]float64) int {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// sanitize coerces non-finite numeric inputs to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
