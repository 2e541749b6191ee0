// Nexa Fund Recommender - Hybrid Campaign Recommendation Engine
// Copyright 2026 Nexa Fund
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexafund/recommender

package recommend

import "errors"

// Error taxonomy for the recommendation engine. Scoring primitives
// never surface these to callers of Rank; they degrade to 0.0 scores.
// Refresh and the explicit query operations return them wrapped.
var (
	// ErrDataUnavailable indicates the backend data set could not be
	// obtained. The previously built model, if any, stays in effect.
	ErrDataUnavailable = errors.New("recommend: data unavailable")

	// ErrInsufficientSignal indicates too few interaction cells to fit
	// a meaningful factorization (fewer than 4 non-zero cells).
	ErrInsufficientSignal = errors.New("recommend: insufficient interaction signal")

	// ErrUnknownEntity indicates a donor or campaign id that is not
	// part of the current model snapshot.
	ErrUnknownEntity = errors.New("recommend: unknown entity")

	// ErrNumericDegeneracy indicates a degenerate numeric result from
	// factorization (all-zero factors, non-finite reconstruction).
	ErrNumericDegeneracy = errors.New("recommend: numeric degeneracy")

	// ErrNoModel indicates no snapshot has been built yet.
	ErrNoModel = errors.New("recommend: no model loaded")
)
