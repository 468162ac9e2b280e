// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"
)

// RiskLevel is the ordinal risk bucket derived from a 0-100 risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskLevels lists every risk level from least to most severe.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Valid reports whether l is one of the known risk levels.
func (l RiskLevel) Valid() bool {
	return l.Rank() > 0
}

// Rank returns a numeric rank for sorting (higher = more severe, 0 = unknown).
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// ParseRiskLevel parses a risk level case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, l := range RiskLevels {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown risk level %q (expected Low, Medium, High or Critical)", s)
}

// ComplianceStatus is the compliance state assigned to a vendor.
type ComplianceStatus string

const (
	Compliant    ComplianceStatus = "Compliant"
	Partial      ComplianceStatus = "Partial"
	NonCompliant ComplianceStatus = "Non-Compliant"
)

// ComplianceStatuses lists every compliance status from best to worst.
var ComplianceStatuses = []ComplianceStatus{Compliant, Partial, NonCompliant}

// Valid reports whether c is one of the known compliance statuses.
func (c ComplianceStatus) Valid() bool {
	return c.Rank() > 0
}

// Rank returns a numeric rank for sorting (higher = worse, 0 = unknown).
func (c ComplianceStatus) Rank() int {
	switch c {
	case Compliant:
		return 1
	case Partial:
		return 2
	case NonCompliant:
		return 3
	default:
		return 0
	}
}

// ParseComplianceStatus parses a compliance status case-insensitively.
// "noncompliant" and "non_compliant" are accepted as aliases.
func ParseComplianceStatus(s string) (ComplianceStatus, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for _, c := range ComplianceStatuses {
		if norm == strings.ReplaceAll(strings.ToLower(string(c)), "-", "") {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown compliance status %q (expected Compliant, Partial or Non-Compliant)", s)
}

// AssessmentStatus is the lifecycle state of a supply chain assessment.
type AssessmentStatus string

const (
	StatusInProgress AssessmentStatus = "in_progress"
	StatusCompleted  AssessmentStatus = "completed"
)

// Valid reports whether s is a known assessment status.
func (s AssessmentStatus) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}
