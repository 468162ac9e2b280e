// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package risk

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrNoRatings is returned when no factor was rated.
	ErrNoRatings = errors.New("at least one factor rating is required")
	// ErrInvalidRating is returned for ratings outside 1-5.
	ErrInvalidRating = errors.New("factor rating out of range")
	// ErrUnknownFactor is returned for ratings of factors that do not exist.
	ErrUnknownFactor = errors.New("unknown risk factor")
)

// Factor is one weighted dimension of vendor risk. Ratings run from 1
// (little risk) to 5 (severe risk).
type Factor struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// DefaultFactors is the canonical set of six vendor risk factors.
var DefaultFactors = []Factor{
	{ID: "data_access", Name: "Data Access", Description: "Sensitivity and volume of data the vendor can access", Weight: 3},
	{ID: "system_criticality", Name: "System Criticality", Description: "Impact on operations if the vendor fails", Weight: 3},
	{ID: "security_posture", Name: "Security Posture", Description: "Weakness of the vendor's security controls", Weight: 2},
	{ID: "compliance_history", Name: "Compliance History", Description: "Past audit findings and regulatory issues", Weight: 2},
	{ID: "financial_stability", Name: "Financial Stability", Description: "Risk of vendor insolvency", Weight: 1},
	{ID: "geographic_exposure", Name: "Geographic Exposure", Description: "Jurisdictional and geopolitical exposure", Weight: 1},
}

// FactorContribution is the weighted share of a single rating.
type FactorContribution struct {
	Factor   string  `json:"factor"`
	Rating   int     `json:"rating"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Assessment is the outcome of scoring a set of factor ratings.
type Assessment struct {
	Score     int                  `json:"score"`
	Level     types.RiskLevel      `json:"level"`
	Breakdown []FactorContribution `json:"breakdown"`
}

// ScoreFactors computes a 0-100 score from 1-5 factor ratings, inverted so
// that higher ratings lower the score. Only rated factors count: the
// weighted sum is divided by its maximum, shifted by the 0.2 floor that
// all-minimum ratings produce, and rescaled so that all-1 ratings give
// 100 and all-5 ratings give 0.
func ScoreFactors(ratings map[string]int, factors []Factor) (*Assessment, error) {
	if len(ratings) == 0 {
		return nil, ErrNoRatings
	}
	if factors == nil {
		factors = DefaultFactors
	}
	byID := make(map[string]Factor, len(factors))
	for _, f := range factors {
		byID[f.ID] = f
	}

	ids := make([]string, 0, len(ratings))
	for id := range ratings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sum, maxSum float64
	breakdown := make([]FactorContribution, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFactor, id)
		}
		r := ratings[id]
		if r < MinRating || r > MaxRating {
			return nil, fmt.Errorf("%w: %s=%d (expected %d-%d)", ErrInvalidRating, id, r, MinRating, MaxRating)
		}
		sum += f.Weight * float64(r)
		maxSum += f.Weight * MaxRating
		breakdown = append(breakdown, FactorContribution{
			Factor:   id,
			Rating:   r,
			Weight:   f.Weight,
			Weighted: f.Weight * float64(r),
		})
	}
	if maxSum == 0 {
		return nil, ErrNoRatings
	}

	floor := float64(MinRating) / MaxRating
	ratio := (sum/maxSum - floor) / (1 - floor)
	score := clamp(int(math.Round((1 - ratio) * 100)))

	return &Assessment{
		Score:     score,
		Level:     LevelForScore(score),
		Breakdown: breakdown,
	}, nil
}
