// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/nexafund/recommender/internal/models"
)

var trendingNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestUrgencySignalBuckets(t *testing.T) {
	tests := []struct {
		name    string
		endDate string
		want    float64
	}{
		{"two days left", trendingNow.Add(48 * time.Hour).Format(time.RFC3339), 1.0},
		{"five days left", trendingNow.Add(5 * 24 * time.Hour).Format(time.RFC3339), 0.7},
		{"ten days left", trendingNow.Add(10 * 24 * time.Hour).Format(time.RFC3339), 0.4},
		{"a month left", trendingNow.Add(30 * 24 * time.Hour).Format(time.RFC3339), 0.2},
		{"already expired", trendingNow.Add(-24 * time.Hour).Format(time.RFC3339), 0.2},
		{"plain date format", "2026-06-02", 1.0},
		{"unparseable", "next tuesday", 0.2},
		{"empty", "", 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urgencySignal(tt.endDate, trendingNow); got != tt.want {
				t.Errorf("urgencySignal(%q) = %v, want %v", tt.endDate, got, tt.want)
			}
		})
	}
}

func TestExpiredDeadlineIsNeverUrgent(t *testing.T) {
	// A naive "days <= 3" bucket would give expired campaigns full
	// urgency; they must get the floor instead.
	expired := trendingNow.Add(-time.Hour).Format(time.RFC3339)
	if got := urgencySignal(expired, trendingNow); got != 0.2 {
		t.Errorf("expired deadline must score the 0.2 floor, got %v", got)
	}
}

func TestProgressSignalBuckets(t *testing.T) {
	tests := []struct {
		current, target float64
		want            float64
	}{
		{90, 100, 1.0},
		{80, 100, 1.0},
		{60, 100, 0.7},
		{50, 100, 0.7},
		{25, 100, 0.25},
		{0, 100, 0},
		{10, 0, 0},
		{150, 100, 1.0},
	}
	for _, tt := range tests {
		if got := progressSignal(tt.current, tt.target); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("progressSignal(%v, %v) = %v, want %v", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestTrendingScoreComposition(t *testing.T) {
	c := &models.Campaign{
		ContributionsCount: 50,
		CurrentAmount:      90,
		TargetAmount:       100,
		EndDate:            trendingNow.Add(48 * time.Hour).Format(time.RFC3339),
	}

	// 0.4*1.0 + 0.3*(0.7*1.0) + 0.2*1.0 + 0.1*1.0 = 0.91
	if got := trendingScore(c, trendingNow); math.Abs(got-0.91) > 1e-12 {
		t.Errorf("trendingScore = %v, want 0.91", got)
	}
}

func TestTrendingScoreColdCampaign(t *testing.T) {
	c := &models.Campaign{
		ContributionsCount: 0,
		CurrentAmount:      0,
		TargetAmount:       10000,
		EndDate:            "",
	}

	// Only the urgency floor contributes: 0.1 * 0.2 = 0.02
	if got := trendingScore(c, trendingNow); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("cold campaign trendingScore = %v, want 0.02", got)
	}
}

func TestTrendingScoreSaturatesContributions(t *testing.T) {
	base := &models.Campaign{ContributionsCount: 50, TargetAmount: 100}
	busy := &models.Campaign{ContributionsCount: 5000, TargetAmount: 100}

	if trendingScore(base, trendingNow) != trendingScore(busy, trendingNow) {
		t.Error("contribution signal must saturate at the cap")
	}
}

func TestParseDeadlineFormats(t *testing.T) {
	if _, ok := parseDeadline("2026-07-15T10:00:00Z"); !ok {
		t.Error("RFC3339 must parse")
	}
	if _, ok := parseDeadline("2026-07-15"); !ok {
		t.Error("plain date must parse")
	}
	if _, ok := parseDeadline("15/07/2026"); ok {
		t.Error("unknown format must not parse")
	}
}
