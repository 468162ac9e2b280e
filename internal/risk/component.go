// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package risk

import (
	"math"
	"strings"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

const (
	componentBase       = 75
	perVulnerability    = 15
	alphaVersionPenalty = 10
	betaVersionPenalty  = 5
	maxScore, minScore  = 100, 0
)

// ComponentScore computes the 0-100 score of a single SBOM component.
// Each known vulnerability costs 15 points off a base of 75; pre-release
// versions lose a few more. Higher is safer.
func ComponentScore(vulnerabilities int, version string) int {
	if vulnerabilities < 0 {
		vulnerabilities = 0
	}
	score := componentBase - perVulnerability*vulnerabilities
	v := strings.ToLower(version)
	if strings.Contains(v, "alpha") {
		score -= alphaVersionPenalty
	}
	if strings.Contains(v, "beta") {
		score -= betaVersionPenalty
	}
	return clamp(score)
}

// Summary aggregates the components of one SBOM.
type Summary struct {
	TotalComponents      int
	TotalVulnerabilities int
	RiskScore            int
}

// Summarize totals component and vulnerability counts and averages the
// component scores. An empty SBOM scores 100.
func Summarize(components []types.Component) Summary {
	s := Summary{TotalComponents: len(components), RiskScore: maxScore}
	if len(components) == 0 {
		return s
	}
	var sum int
	for _, c := range components {
		s.TotalVulnerabilities += c.VulnerabilityCount
		sum += c.RiskScore
	}
	s.RiskScore = clamp(int(math.Round(float64(sum) / float64(len(components)))))
	return s
}

// LevelForScore maps a 0-100 score (higher is safer) onto a risk level.
func LevelForScore(score int) types.RiskLevel {
	switch {
	case score >= 75:
		return types.RiskLow
	case score >= 50:
		return types.RiskMedium
	case score >= 25:
		return types.RiskHigh
	default:
		return types.RiskCritical
	}
}

func clamp(score int) int {
	return min(max(score, minScore), maxScore)
}
