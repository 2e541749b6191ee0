// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

// Package recommend implements the hybrid campaign recommendation
// engine: shared text+numeric embeddings for donors and campaigns, a
// donor x campaign interaction matrix, non-negative matrix
// factorization for collaborative filtering, four scoring primitives
// (interest, collaborative, content, trending) and the weighted
// ranking that blends them.
//
// The engine serves reads from an immutable model snapshot. Refresh
// builds a complete new snapshot off to the side and swaps it in
// atomically, so concurrent ranking requests never observe a
// partially-built model. When the collaborative signal is too weak to
// factorize, the engine degrades to content and trending scoring
// rather than failing.
package recommend
