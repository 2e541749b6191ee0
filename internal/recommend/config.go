// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import "fmt"

// Config contains all tunables for the recommendation engine.
type Config struct {
	// Embedding configures the shared TF-IDF vocabulary and numeric
	// feature handling.
	Embedding EmbeddingConfig `koanf:"embedding"`

	// Matrix configures the synthetic interaction matrix fallbacks.
	Matrix MatrixConfig `koanf:"matrix"`

	// Factorization configures the NMF fit.
	Factorization FactorizationConfig `koanf:"factorization"`

	// Personalized is the weight set used when the request carries a
	// non-empty interest list.
	Personalized Weights `koanf:"personalized"`

	// Fallback is the weight set for logged-in donors without usable
	// preferences. Interest weight is zero by construction.
	Fallback Weights `koanf:"fallback"`

	// Affinity is the bio-keyword to campaign-keyword bonus table used
	// when synthesizing interactions from embeddings.
	Affinity []AffinityRule `koanf:"affinity"`

	// DefaultTopN is the result count when the request does not set one.
	DefaultTopN int `koanf:"default_top_n"`

	// MaxTopN bounds the per-request result count.
	MaxTopN int `koanf:"max_top_n"`
}

// EmbeddingConfig controls vocabulary fitting and numeric scaling.
type EmbeddingConfig struct {
	// MaxFeatures caps the vocabulary size. Default: 2000
	MaxFeatures int `koanf:"max_features"`

	// MaxDocFreq drops terms appearing in more than this fraction of
	// documents. Default: 0.95
	MaxDocFreq float64 `koanf:"max_doc_freq"`

	// MinDocCount drops terms appearing in fewer documents. Default: 1
	MinDocCount int `koanf:"min_doc_count"`
}

// MatrixConfig controls the synthetic interaction tiers.
type MatrixConfig struct {
	// WeightCap divides observed contribution totals before clamping
	// to [0,1]. Default: 1000
	WeightCap float64 `koanf:"weight_cap"`

	// SyntheticTopK is how many campaigns get a synthetic interaction
	// per donor on the similarity tier. Default: 5
	SyntheticTopK int `koanf:"synthetic_top_k"`

	// SeedTopK is how many campaigns get seeded per donor on the
	// last-resort tier. Default: 3
	SeedTopK int `koanf:"seed_top_k"`
}

// FactorizationConfig controls the NMF fit.
type FactorizationConfig struct {
	// Rank is the target number of latent factors before the small
	// catalog cap is applied. Default: 10
	Rank int `koanf:"rank"`

	// MaxIterations bounds the multiplicative update loop. Default: 500
	MaxIterations int `koanf:"max_iterations"`

	// Tolerance stops the fit when the reconstruction error improves
	// by less than this amount between iterations. Default: 0.001
	Tolerance float64 `koanf:"tolerance"`

	// Seed fixes the random factor initialization. Default: 42
	Seed int64 `koanf:"seed"`
}

// Weights is one weight set over the four scoring primitives. The four
// values are normalized to sum to 1 at load time.
type Weights struct {
	Interest      float64 `koanf:"interest"`
	Collaborative float64 `koanf:"collaborative"`
	Content       float64 `koanf:"content"`
	Trending      float64 `koanf:"trending"`
}

// Sum returns the total of the four weights.
func (w Weights) Sum() float64 {
	return w.Interest + w.Collaborative + w.Content + w.Trending
}

// Normalize scales the weights so they sum to 1. A zero sum leaves the
// weights untouched.
func (w *Weights) Normalize() {
	sum := w.Sum()
	if sum <= 0 {
		return
	}
	w.Interest /= sum
	w.Collaborative /= sum
	w.Content /= sum
	w.Trending /= sum
}

// AffinityRule maps a group of donor bio keywords to a group of
// campaign keywords. When a donor bio mentions any of the bio keywords
// and a campaign's category or title mentions any of the campaign
// keywords, Bonus is added to their synthetic similarity.
type AffinityRule struct {
	BioKeywords      []string `koanf:"bio_keywords"`
	CampaignKeywords []string `koanf:"campaign_keywords"`
	Bonus            float64  `koanf:"bonus"`
}

// DefaultConfig returns the production defaults. The affinity table
// ships with the three historical keyword groups; deployments extend
// it through configuration instead of code.
func DefaultConfig() Config {
	return Config{
		Embedding: EmbeddingConfig{
			MaxFeatures: 2000,
			MaxDocFreq:  0.95,
			MinDocCount: 1,
		},
		Matrix: MatrixConfig{
			WeightCap:     1000,
			SyntheticTopK: 5,
			SeedTopK:      3,
		},
		Factorization: FactorizationConfig{
			Rank:          10,
			MaxIterations: 500,
			Tolerance:     0.001,
			Seed:          42,
		},
		Personalized: Weights{
			Interest:      0.40,
			Collaborative: 0.30,
			Content:       0.20,
			Trending:      0.10,
		},
		Fallback: Weights{
			Interest:      0,
			Collaborative: 0.50,
			Content:       0.30,
			Trending:      0.20,
		},
		Affinity: []AffinityRule{
			{
				BioKeywords:      []string{"teacher", "education"},
				CampaignKeywords: []string{"education", "technology", "smart"},
				Bonus:            0.3,
			},
			{
				BioKeywords:      []string{"doctor", "health"},
				CampaignKeywords: []string{"health", "fitness", "dental"},
				Bonus:            0.3,
			},
			{
				BioKeywords:      []string{"fashion", "style", "creativity"},
				CampaignKeywords: []string{"fashion", "art", "film"},
				Bonus:            0.3,
			},
		},
		DefaultTopN: 10,
		MaxTopN:     100,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Embedding.MaxFeatures <= 0 {
		return fmt.Errorf("embedding.max_features must be positive, got %d", c.Embedding.MaxFeatures)
	}
	if c.Embedding.MaxDocFreq <= 0 || c.Embedding.MaxDocFreq > 1 {
		return fmt.Errorf("embedding.max_doc_freq must be in (0,1], got %f", c.Embedding.MaxDocFreq)
	}
	if c.Embedding.MinDocCount < 1 {
		return fmt.Errorf("embedding.min_doc_count must be at least 1, got %d", c.Embedding.MinDocCount)
	}
	if c.Matrix.WeightCap <= 0 {
		return fmt.Errorf("matrix.weight_cap must be positive, got %f", c.Matrix.WeightCap)
	}
	if c.Matrix.SyntheticTopK <= 0 {
		return fmt.Errorf("matrix.synthetic_top_k must be positive, got %d", c.Matrix.SyntheticTopK)
	}
	if c.Matrix.SeedTopK <= 0 {
		return fmt.Errorf("matrix.seed_top_k must be positive, got %d", c.Matrix.SeedTopK)
	}
	if c.Factorization.Rank <= 0 {
		return fmt.Errorf("factorization.rank must be positive, got %d", c.Factorization.Rank)
	}
	if c.Factorization.MaxIterations <= 0 {
		return fmt.Errorf("factorization.max_iterations must be positive, got %d", c.Factorization.MaxIterations)
	}
	if c.Factorization.Tolerance <= 0 {
		return fmt.Errorf("factorization.tolerance must be positive, got %f", c.Factorization.Tolerance)
	}
	if c.Personalized.Sum() <= 0 {
		return fmt.Errorf("personalized weights must have a positive sum")
	}
	if c.Fallback.Sum() <= 0 {
		return fmt.Errorf("fallback weights must have a positive sum")
	}
	if c.Fallback.Interest != 0 {
		return fmt.Errorf("fallback.interest must be zero, got %f", c.Fallback.Interest)
	}
	for i, rule := range c.Affinity {
		if len(rule.BioKeywords) == 0 || len(rule.CampaignKeywords) == 0 {
			return fmt.Errorf("affinity rule %d must have bio and campaign keywords", i)
		}
		if rule.Bonus < 0 {
			return fmt.Errorf("affinity rule %d bonus must not be negative, got %f", i, rule.Bonus)
		}
	}
	if c.DefaultTopN <= 0 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("max_top_n (%d) must be at least default_top_n (%d)", c.MaxTopN, c.DefaultTopN)
	}
	return nil
}
