// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"strings"

	"github.com/nexafund/recommender/internal/models"
)

// Interest score component weights.
const (
	categoryWeight   = 0.5
	keywordWeight    = 0.3
	preferenceWeight = 0.2
)

// interestScore blends category match, keyword match and preference
// alignment. An empty interest list scores exactly 0 regardless of
// keywords; the primitive only activates for personalized requests.
func (s *modelSnapshot) interestScore(prefs *models.UserPreferences, c *models.Campaign) float64 {
	if prefs.IsEmpty() {
		return 0
	}

	category := categoryMatchScore(prefs.Interests, c.Category)
	keyword := keywordMatchScore(prefs.Keywords, c)
	alignment := preferenceAlignment(prefs, c)

	combined := categoryWeight*category + keywordWeight*keyword + preferenceWeight*alignment
	return clip01(combined)
}

// categoryMatchScore is the best match between any interest and the
// campaign category: exact 1.0, substring containment 0.8, word
// overlap ratio >=0.5 scores 0.7, >=0.3 scores 0.5.
func categoryMatchScore(interests []string, category string) float64 {
	category = normalizeLabel(category)
	if category == "" {
		return 0
	}

	best := 0.0
	for _, raw := range interests {
		interest := normalizeLabel(raw)
		if interest == "" {
			continue
		}

		var score float64
		switch {
		case interest == category:
			score = 1.0
		case strings.Contains(interest, category) || strings.Contains(category, interest):
			score = 0.8
		default:
			switch ratio := wordOverlapRatio(interest, category); {
			case ratio >= 0.5:
				score = 0.7
			case ratio >= 0.3:
				score = 0.5
			}
		}

		if score > best {
			best = score
		}
	}
	return best
}

// normalizeLabel lowercases and folds label punctuation to spaces so
// "health-care" and "health care" compare equal.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// wordOverlapRatio is |intersection| / max(|a words|, |b words|).
func wordOverlapRatio(a, b string) float64 {
	aWords := strings.Fields(a)
	bWords := strings.Fields(b)
	if len(aWords) == 0 || len(bWords) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(aWords))
	for _, w := range aWords {
		set[w] = struct{}{}
	}
	common := 0
	for _, w := range bWords {
		if _, ok := set[w]; ok {
			common++
			delete(set, w)
		}
	}

	maxLen := len(aWords)
	if len(bWords) > maxLen {
		maxLen = len(bWords)
	}
	return float64(common) / float64(maxLen)
}

// keywordMatchScore is the fraction of user keywords found as
// substrings of the campaign title, description and story.
func keywordMatchScore(keywords []string, c *models.Campaign) float64 {
	if len(keywords) == 0 {
		return 0
	}

	text := strings.ToLower(c.Title + " " + c.Description + " " + c.Story)
	matched := 0
	total := 0
	for _, raw := range keywords {
		kw := strings.ToLower(strings.TrimSpace(raw))
		if kw == "" {
			continue
		}
		total++
		if strings.Contains(text, kw) {
			matched++
		}
	}
	return safeRatio(float64(matched), float64(total))
}

// preferenceAlignment credits funding bracket fit, risk tolerance fit
// and a fixed location placeholder. Omitted funding preference and
// risk tolerance default to medium, so a request carrying only
// interests still earns the medium-risk credit and is checked against
// the medium funding bracket. Location matching stays a constant 0.34
// credit until donor geography is available.
func preferenceAlignment(prefs *models.UserPreferences, c *models.Campaign) float64 {
	var score float64

	funding := prefs.FundingPreference
	if funding == "" {
		funding = models.FundingMedium
	}
	if funding == models.FundingAny || funding == fundingBracket(c.TargetAmount) {
		score += 0.33
	}

	risk := prefs.RiskTolerance
	if risk == "" {
		risk = models.RiskMedium
	}
	switch risk {
	case models.RiskLow:
		if c.IsVerified {
			score += 0.33
		}
	case models.RiskMedium:
		score += 0.33
	case models.RiskHigh:
		if !c.IsVerified {
			score += 0.33
		}
	}

	score += 0.34

	return clip01(score)
}

// fundingBracket buckets a target amount.
func fundingBracket(target float64) string {
	switch {
	case target <= 5000:
		return models.FundingSmall
	case target <= 20000:
		return models.FundingMedium
	default:
		return models.FundingLarge
	}
}

// collaborativeScore predicts affinity from the latent factors.
// Unknown donors or an unavailable factorization score 0 so the ranker
// degrades instead of failing.
func (s *modelSnapshot) collaborativeScore(donorID string, campaignIdx int) float64 {
	if s.factors == nil || !s.factors.available {
		return 0
	}
	donorIdx, ok := s.donorIndex[donorID]
	if !ok {
		return 0
	}
	return s.factors.predict(donorIdx, campaignIdx)
}

// contentScore rescales embedding cosine similarity from [-1,1] to
// [0,1].
func (s *modelSnapshot) contentScore(donorIdx, campaignIdx int) float64 {
	sim := safeCosine(s.emb.donorVector(donorIdx), s.emb.campaignVector(campaignIdx))
	return clip01((sim + 1) / 2)
}
