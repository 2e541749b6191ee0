// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"sort"

	"github.com/nexafund/recommender/internal/models"
)

// similarDonors ranks other donors by cosine similarity of their
// latent factor vectors. The subject donor never appears in its own
// result; zero-norm latent vectors yield similarity 0 rather than an
// error. Returns nil when the factorization is unavailable or only one
// donor exists.
func (s *modelSnapshot) similarDonors(donorID string, n int) []models.SimilarDonor {
	if s.factors == nil || !s.factors.available {
		return nil
	}
	donorIdx, ok := s.donorIndex[donorID]
	if !ok {
		return nil
	}
	if s.factors.donorCount() <= 1 {
		return nil
	}

	subject := s.factors.donorFactor(donorIdx)
	results := make([]models.SimilarDonor, 0, len(s.donors)-1)
	for i := range s.donors {
		if i == donorIdx {
			continue
		}
		results = append(results, models.SimilarDonor{
			Donor:      s.donors[i],
			Similarity: round3(safeCosine(subject, s.factors.donorFactor(i))),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Similarity > results[b].Similarity
	})

	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}
