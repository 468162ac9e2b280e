// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package query filters, sorts and aggregates vendor portfolios.
package query

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

// SortField names a vendor attribute to order by.
type SortField string

const (
	SortByName           SortField = "name"
	SortByRiskScore      SortField = "risk_score"
	SortByRiskLevel      SortField = "risk_level"
	SortByCompliance     SortField = "compliance"
	SortByLastAssessment SortField = "last_assessment"
	SortByCreatedAt      SortField = "created_at"
)

var sortFields = []SortField{
	SortByName, SortByRiskScore, SortByRiskLevel, SortByCompliance, SortByLastAssessment, SortByCreatedAt,
}

// ParseSortField validates a sort key. The empty string means by name.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortByName, nil
	}
	for _, f := range sortFields {
		if SortField(strings.ToLower(s)) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// VendorFilter selects vendors. Empty fields match everything.
type VendorFilter struct {
	Search     string
	RiskLevels []types.RiskLevel
	Compliance []types.ComplianceStatus
	SortBy     SortField
	Descending bool
}

type matcher struct {
	search     string
	levels     mapset.Set[types.RiskLevel]
	compliance mapset.Set[types.ComplianceStatus]
}

func (f VendorFilter) matcher() matcher {
	return matcher{
		search:     strings.ToLower(strings.TrimSpace(f.Search)),
		levels:     mapset.NewThreadUnsafeSet(f.RiskLevels...),
		compliance: mapset.NewThreadUnsafeSet(f.Compliance...),
	}
}

func (m matcher) match(v types.Vendor) bool {
	if m.levels.Cardinality() > 0 && !m.levels.Contains(v.RiskLevel) {
		return false
	}
	if m.compliance.Cardinality() > 0 && !m.compliance.Contains(v.ComplianceStatus) {
		return false
	}
	if m.search == "" {
		return true
	}
	for _, field := range []string{v.Name, v.Industry, v.ContactEmail} {
		if strings.Contains(strings.ToLower(field), m.search) {
			return true
		}
	}
	return false
}

// Match reports whether v satisfies every active predicate.
func (f VendorFilter) Match(v types.Vendor) bool {
	return f.matcher().match(v)
}

// Apply returns the matching vendors in the requested order. The input
// slice is not modified.
func Apply(vendors []types.Vendor, f VendorFilter) []types.Vendor {
	m := f.matcher()
	out := make([]types.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if m.match(v) {
			out = append(out, v)
		}
	}

	less := lessFunc(f.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if f.Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field SortField) func(a, b types.Vendor) bool {
	switch field {
	case SortByRiskScore:
		return func(a, b types.Vendor) bool { return a.RiskScore < b.RiskScore }
	case SortByRiskLevel:
		return func(a, b types.Vendor) bool { return a.RiskLevel.Rank() < b.RiskLevel.Rank() }
	case SortByCompliance:
		return func(a, b types.Vendor) bool { return a.ComplianceStatus.Rank() < b.ComplianceStatus.Rank() }
	case SortByLastAssessment:
		// Never-assessed vendors sort first ascending.
		return func(a, b types.Vendor) bool {
			if a.LastAssessmentDate == nil || b.LastAssessmentDate == nil {
				return a.LastAssessmentDate == nil && b.LastAssessmentDate != nil
			}
			return a.LastAssessmentDate.Before(*b.LastAssessmentDate)
		}
	case SortByCreatedAt:
		return func(a, b types.Vendor) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b types.Vendor) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
}

// CountByRiskLevel counts vendors per risk level. Every known level is
// present in the result.
func CountByRiskLevel(vendors []types.Vendor) map[types.RiskLevel]int {
	counts := make(map[types.RiskLevel]int, len(types.RiskLevels))
	for _, l := range types.RiskLevels {
		counts[l] = 0
	}
	for _, v := range vendors {
		counts[v.RiskLevel]++
	}
	return counts
}

// CountByCompliance counts vendors per compliance status. Every known
// status is present in the result.
func CountByCompliance(vendors []types.Vendor) map[types.ComplianceStatus]int {
	counts := make(map[types.ComplianceStatus]int, len(types.ComplianceStatuses))
	for _, c := range types.ComplianceStatuses {
		counts[c] = 0
	}
	for _, v := range vendors {
		counts[v.ComplianceStatus]++
	}
	return counts
}

// ParseFilter builds a VendorFilter from raw string inputs, such as
// query parameters or CLI flags. Each level and compliance entry may hold
// a comma separated list.
func ParseFilter(search string, levels, compliance []string, sortBy string, descending bool) (VendorFilter, error) {
	f := VendorFilter{Search: search, Descending: descending}
	for _, raw := range splitList(levels) {
		l, err := types.ParseRiskLevel(raw)
		if err != nil {
			return VendorFilter{}, err
		}
		f.RiskLevels = append(f.RiskLevels, l)
	}
	for _, raw := range splitList(compliance) {
		c, err := types.ParseComplianceStatus(raw)
		if err != nil {
			return VendorFilter{}, err
		}
		f.Compliance = append(f.Compliance, c)
	}
	field, err := ParseSortField(sortBy)
	if err != nil {
		return VendorFilter{}, err
	}
	f.SortBy = field
	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
