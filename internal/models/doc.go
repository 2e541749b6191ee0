// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package models defines the domain types exchanged with the Nexa Fund
// backend and the API response envelope shared by all HTTP endpoints.
//
// Donors, campaigns and contribution aggregates are owned by the
// backend; this service reads them wholesale on each refresh and never
// writes them back.
package models
