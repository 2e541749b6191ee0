// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"sort"
	"time"

	"github.com/nexafund/recommender/internal/models"
)

// Badge thresholds over the combined score.
const (
	topMatchThreshold    = 0.80
	recommendedThreshold = 0.60
)

// rank scores every active campaign under the given mode and returns
// the top n, sorted by combined score descending. The sort is stable:
// equal scores keep their candidate order and no secondary key is
// applied. Ranking never mutates the snapshot, so repeated calls over
// the same snapshot and inputs produce identical output.
func (s *modelSnapshot) rank(mode Mode, donorID string, prefs *models.UserPreferences, weights Weights, n int, now time.Time) []models.ScoredCampaign {
	scored := make([]models.ScoredCampaign, 0, len(s.campaigns))

	for j := range s.campaigns {
		c := &s.campaigns[j]
		if !c.IsActive() {
			continue
		}

		breakdown := s.scoreBreakdown(mode, donorID, prefs, c, j, now)

		// The combined score is derived from the rounded primitives so
		// the reported breakdown always reproduces the reported score.
		combined := round3(clip01(
			weights.Interest*breakdown.Interest +
				weights.Collaborative*breakdown.Collaborative +
				weights.Content*breakdown.Content +
				weights.Trending*breakdown.Trending))

		scored = append(scored, models.ScoredCampaign{
			Campaign: *c,
			Score:    combined,
			Badge:    badgeFor(mode, combined),
			Scores:   breakdown,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if n > 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// scoreBreakdown computes the four primitives for one campaign.
// Signals with zero weight in the active mode are skipped and reported
// as 0 rather than computed.
func (s *modelSnapshot) scoreBreakdown(mode Mode, donorID string, prefs *models.UserPreferences, c *models.Campaign, campaignIdx int, now time.Time) models.ScoreBreakdown {
	var breakdown models.ScoreBreakdown

	breakdown.Trending = round3(trendingScore(c, now))
	if mode == ModeTrending {
		return breakdown
	}

	if mode == ModePersonalized {
		breakdown.Interest = round3(s.interestScore(prefs, c))
	}
	breakdown.Collaborative = round3(s.collaborativeScore(donorID, campaignIdx))
	if donorIdx, ok := s.donorIndex[donorID]; ok {
		breakdown.Content = round3(s.contentScore(donorIdx, campaignIdx))
	}

	return breakdown
}

// badgeFor classifies a combined score. The trending-only path labels
// its strong results "trending" instead of "recommended".
func badgeFor(mode Mode, score float64) string {
	switch {
	case mode != ModeTrending && score >= topMatchThreshold:
		return models.BadgeTopMatch
	case score >= recommendedThreshold:
		if mode == ModeTrending {
			return models.BadgeTrending
		}
		return models.BadgeRecommended
	default:
		return models.BadgeOther
	}
}

// selectMode resolves the recommendation mode for a request.
func selectMode(donorID string, prefs *models.UserPreferences) Mode {
	if donorID == "" {
		return ModeTrending
	}
	if prefs.IsEmpty() {
		return ModeFallback
	}
	return ModePersonalized
}
