// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"time"

	"github.com/nexafund/recommender/internal/models"
)

// Trending signal component weights.
const (
	contributionSignalWeight = 0.4
	viewSignalWeight         = 0.3
	progressSignalWeight     = 0.2
	urgencySignalWeight      = 0.1
)

// contributionCap is the contribution count at which the activity
// proxy saturates.
const contributionCap = 50.0

// viewProxyFactor derives a view signal from contributions; raw view
// counts are not tracked by the platform.
const viewProxyFactor = 0.7

// trendingScore blends contribution activity, the derived view proxy,
// funding progress and deadline urgency, independent of any
// personalization.
func trendingScore(c *models.Campaign, now time.Time) float64 {
	contribution := clip01(float64(c.ContributionsCount) / contributionCap)
	views := viewProxyFactor * contribution
	progress := progressSignal(c.CurrentAmount, c.TargetAmount)
	urgency := urgencySignal(c.EndDate, now)

	total := contributionSignalWeight*contribution +
		viewSignalWeight*views +
		progressSignalWeight*progress +
		urgencySignalWeight*urgency
	return clip01(total)
}

// progressSignal buckets funding progress: nearly funded campaigns get
// full credit, majority-funded get 0.7, otherwise the raw ratio.
func progressSignal(current, target float64) float64 {
	ratio := clip01(safeRatio(current, target))
	switch {
	case ratio >= 0.8:
		return 1.0
	case ratio >= 0.5:
		return 0.7
	default:
		return ratio
	}
}

// urgencySignal maps days until the campaign deadline to an urgency
// bucket. Unparseable dates and campaigns already past their deadline
// both score the 0.2 floor; an expired deadline is never treated as
// urgent.
func urgencySignal(endDate string, now time.Time) float64 {
	deadline, ok := parseDeadline(endDate)
	if !ok {
		return 0.2
	}

	days := deadline.Sub(now).Hours() / 24
	switch {
	case days < 0:
		return 0.2
	case days <= 3:
		return 1.0
	case days <= 7:
		return 0.7
	case days <= 14:
		return 0.4
	default:
		return 0.2
	}
}

// parseDeadline accepts RFC3339 timestamps and plain dates.
func parseDeadline(endDate string) (time.Time, bool) {
	if endDate == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, endDate); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", endDate); err == nil {
		return t, true
	}
	return time.Time{}, false
}
