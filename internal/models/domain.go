// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package models

import "time"

// Donor is a platform user who contributes to campaigns.
// Read-only to this service; re-fetched wholesale on each refresh.
type Donor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Bio           string    `json:"bio"`
	IsVerified    bool      `json:"isVerified"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	Role          string    `json:"role,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// CampaignStatusActive is the only status eligible for ranking.
const CampaignStatusActive = "ACTIVE"

// Campaign is a fundraising campaign as served by the backend export API.
type Campaign struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Story              string  `json:"story"`
	Category           string  `json:"category"`
	TargetAmount       float64 `json:"targetAmount"`
	CurrentAmount      float64 `json:"currentAmount"`
	EscrowAmount       float64 `json:"escrowAmount"`
	ReleasedAmount     float64 `json:"releasedAmount"`
	RiskScore          float64 `json:"riskScore"`
	Status             string  `json:"status"`
	EndDate            string  `json:"endDate"`
	IsVerified         bool    `json:"isVerified"`
	ContributionsCount int     `json:"contributionsCount"`
}

// IsActive reports whether the campaign is eligible for ranking.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

// Interaction is an aggregated contribution signal for one
// donor/campaign pair. Weight is the total contributed amount in
// platform currency units; absent pairs imply zero affinity.
type Interaction struct {
	UserID     string  `json:"userId"`
	CampaignID string  `json:"campaignId"`
	Weight     float64 `json:"weight"`
}

// Funding size preference brackets.
const (
	FundingSmall  = "small"  // target <= 5000
	FundingMedium = "medium" // 5000 < target <= 20000
	FundingLarge  = "large"  // target > 20000
	FundingAny    = "any"
)

// Risk tolerance preference levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// UserPreferences carries a donor's request-scoped personalization
// signal. Never persisted.
type UserPreferences struct {
	// Interests is a list of category-like tags ("education", "health").
	Interests []string `json:"interests" validate:"omitempty,max=50,dive,max=100"`

	// Keywords are free-text terms matched against campaign text.
	Keywords []string `json:"keywords" validate:"omitempty,max=50,dive,max=100"`

	// FundingPreference selects a target-amount bracket. Empty is
	// treated as "medium" by the scorer.
	FundingPreference string `json:"fundingPreference" validate:"omitempty,oneof=small medium large any"`

	// RiskTolerance selects a risk appetite. Empty is treated as
	// "medium" by the scorer.
	RiskTolerance string `json:"riskTolerance" validate:"omitempty,oneof=low medium high"`

	// Location is reserved; location matching is not implemented yet.
	Location string `json:"location,omitempty" validate:"omitempty,max=200"`
}

// IsEmpty reports whether the preferences carry no usable interest
// signal. Keywords alone do not make a request personalized.
func (p *UserPreferences) IsEmpty() bool {
	return p == nil || len(p.Interests) == 0
}

// Badge labels derived from the combined score.
const (
	BadgeTopMatch    = "top_match"   // combined >= 0.80
	BadgeRecommended = "recommended" // combined >= 0.60
	BadgeTrending    = "trending"    // >= 0.60 on the trending-only path
	BadgeOther       = "other"
)

// ScoreBreakdown exposes the four primitive scores behind a combined
// score, each in [0,1].
type ScoreBreakdown struct {
	Interest      float64 `json:"interest"`
	Collaborative float64 `json:"collaborative"`
	Content       float64 `json:"content"`
	Trending      float64 `json:"trending"`
}

// ScoredCampaign is a campaign with its relevance score for one
// request. Transient, produced per request.
type ScoredCampaign struct {
	Campaign Campaign       `json:"campaign"`
	Score    float64        `json:"score"`
	Badge    string         `json:"badge"`
	Scores   ScoreBreakdown `json:"scores"`
}

// SimilarDonor is a donor paired with its latent-factor similarity to
// the query donor.
type SimilarDonor struct {
	Donor      Donor   `json:"donor"`
	Similarity float64 `json:"similarity"`
}
