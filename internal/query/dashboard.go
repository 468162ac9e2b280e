// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"math"
	"sort"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

const recentVendorLimit = 5

// VendorStats summarizes a vendor portfolio.
type VendorStats struct {
	Total            int                            `json:"total"`
	AverageRiskScore int                            `json:"average_risk_score"`
	HighRisk         int                            `json:"high_risk"`
	Compliant        int                            `json:"compliant"`
	ByRiskLevel      map[types.RiskLevel]int        `json:"by_risk_level"`
	ByCompliance     map[types.ComplianceStatus]int `json:"by_compliance"`
}

// Stats aggregates vendors. HighRisk counts High and Critical vendors.
func Stats(vendors []types.Vendor) VendorStats {
	s := VendorStats{
		Total:        len(vendors),
		ByRiskLevel:  CountByRiskLevel(vendors),
		ByCompliance: CountByCompliance(vendors),
	}
	s.HighRisk = s.ByRiskLevel[types.RiskHigh] + s.ByRiskLevel[types.RiskCritical]
	s.Compliant = s.ByCompliance[types.Compliant]

	scores := make([]int, 0, len(vendors))
	for _, v := range vendors {
		scores = append(scores, v.RiskScore)
	}
	s.AverageRiskScore = mean(scores)
	return s
}

// SBOMStats summarizes uploaded analyses.
type SBOMStats struct {
	Analyses             int `json:"analyses"`
	TotalComponents      int `json:"total_components"`
	TotalVulnerabilities int `json:"total_vulnerabilities"`
	AverageRiskScore     int `json:"average_risk_score"`
}

// AssessmentStats summarizes assessments.
type AssessmentStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	InProgress   int `json:"in_progress"`
	AverageScore int `json:"average_score"`
}

// Dashboard is the overview shown on the landing page.
type Dashboard struct {
	Vendors       VendorStats     `json:"vendors"`
	SBOM          SBOMStats       `json:"sbom"`
	Assessments   AssessmentStats `json:"assessments"`
	RecentVendors []types.Vendor  `json:"recent_vendors"`
}

// BuildDashboard aggregates everything a user owns. Average assessment
// score only considers completed assessments.
func BuildDashboard(vendors []types.Vendor, analyses []types.SBOMAnalysis, assessments []types.Assessment) Dashboard {
	d := Dashboard{Vendors: Stats(vendors)}

	sbomScores := make([]int, 0, len(analyses))
	for _, a := range analyses {
		d.SBOM.Analyses++
		d.SBOM.TotalComponents += a.TotalComponents
		d.SBOM.TotalVulnerabilities += a.TotalVulnerabilities
		sbomScores = append(sbomScores, a.RiskScore)
	}
	d.SBOM.AverageRiskScore = mean(sbomScores)

	d.Assessments = AssessmentSummary(assessments)

	recent := make([]types.Vendor, len(vendors))
	copy(recent, vendors)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentVendorLimit {
		recent = recent[:recentVendorLimit]
	}
	d.RecentVendors = recent
	return d
}

// AssessmentSummary counts assessments by status.
func AssessmentSummary(assessments []types.Assessment) AssessmentStats {
	s := AssessmentStats{Total: len(assessments)}
	var scores []int
	for _, a := range assessments {
		switch a.Status {
		case types.StatusCompleted:
			s.Completed++
			scores = append(scores, a.OverallScore)
		default:
			s.InProgress++
		}
	}
	s.AverageScore = mean(scores)
	return s
}

func mean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}
