// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/sbom"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func testVendors() []types.Vendor {
	assessed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []types.Vendor{
		{ID: "v1", Name: "Acme Cloud", Industry: "Hosting", RiskScore: 80, RiskLevel: types.RiskLow, ComplianceStatus: types.Compliant, LastAssessmentDate: &assessed},
		{ID: "v2", Name: "Beta Payroll", RiskScore: 20, RiskLevel: types.RiskCritical, ComplianceStatus: types.NonCompliant},
		{ID: "v3", Name: "Gamma Mail", RiskScore: 40, RiskLevel: types.RiskHigh, ComplianceStatus: types.Partial},
	}
}

func TestWriteComponents(t *testing.T) {
	res := sbom.DemoComponents()
	summary := res.Summary()

	var buf bytes.Buffer
	require.NoError(t, WriteComponents(&buf, SBOMReport{
		Title:           "demo",
		Format:          res.Format.String(),
		SpecVersion:     res.SpecVersion,
		Components:      res.Components,
		Vulnerabilities: summary.TotalVulnerabilities,
		RiskScore:       summary.RiskScore,
	}, TableConfig{}))

	output := buf.String()
	assert.Contains(t, output, "demo (CycloneDX")
	assert.Contains(t, output, "===")
	assert.Contains(t, output, "Components: 5")

	for _, ch := range []string{"┌", "┘", "│", "├"} {
		assert.Contains(t, output, ch)
	}
	for _, col := range []string{"Component", "Version", "License", "Vulnerabilities", "Risk Score"} {
		assert.Contains(t, output, col)
	}
	assertOrder(t, output, "lodash", "express", "react", "axios", "moment")
}

func TestWriteComponents_NoSpecVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComponents(&buf, SBOMReport{Title: "bom.spdx", Format: "SPDX", RiskScore: 100}, TableConfig{}))
	assert.Contains(t, buf.String(), "bom.spdx (SPDX)\n")
	assert.Contains(t, buf.String(), "Risk score: 100 (Low)")
}

func TestWriteVendors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVendors(&buf, testVendors(), TableConfig{}))

	output := buf.String()
	assert.Contains(t, output, "Total: 3 (Low: 1, Medium: 0, High: 1, Critical: 1)")
	for _, col := range []string{"Name", "Industry", "Risk Score", "Risk Level", "Compliance", "Last Assessment"} {
		assert.Contains(t, output, col)
	}
	assert.Contains(t, output, "2026-03-01")
	assert.Contains(t, output, "never")
	assert.Contains(t, output, "Non-Compliant")
	assertOrder(t, output, "Acme Cloud", "Beta Payroll", "Gamma Mail")
}

func TestWriteVendors_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVendors(&buf, nil, TableConfig{}))
	assert.Contains(t, buf.String(), "Total: 0")
	assert.Contains(t, buf.String(), "Name")
}

func TestWriteVendor(t *testing.T) {
	v := testVendors()[1]
	v.Notes = strings.Repeat("word ", 20)

	var buf bytes.Buffer
	require.NoError(t, WriteVendor(&buf, &v, TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "Beta Payroll")
	assert.Contains(t, output, "Critical")
	assert.Contains(t, output, "...")
}

func TestWriteVendorStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVendorStats(&buf, query.Stats(testVendors()), TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "Vendors: 3, Average risk score: 47, High risk: 2, Compliant: 1")
	assertOrder(t, output, "Low", "Medium", "High", "Critical", "Compliant", "Partial", "Non-Compliant")
}

func TestWriteDashboard(t *testing.T) {
	d := query.BuildDashboard(testVendors(), []types.SBOMAnalysis{{TotalComponents: 4, TotalVulnerabilities: 2, RiskScore: 60}}, nil)
	var buf bytes.Buffer
	require.NoError(t, WriteDashboard(&buf, &d, TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "Analyses: 1, Components: 4, Vulnerabilities: 2, Average risk score: 60")
	assert.Contains(t, output, "Recently added vendors")
}

func TestWriteAnalyses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalyses(&buf, []types.SBOMAnalysis{
		{ID: "a1", Filename: "bom.json", FileType: "CycloneDX", TotalComponents: 5, TotalVulnerabilities: 4, RiskScore: 57},
	}, TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "bom.json")
	assert.Contains(t, output, "57 (Medium)")
}

func TestWriteContacts(t *testing.T) {
	list := []types.ContactSubmission{{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Message:   strings.Repeat("hello ", 30),
		CreatedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteContacts(&buf, list, TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "2026-05-01 09:30")
	assert.Contains(t, output, "...")
}

func TestWriteAssessments(t *testing.T) {
	bank := assessment.DefaultBank()
	done := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	list := []types.Assessment{
		{ID: "a1", Name: "Annual", Status: types.StatusCompleted, OverallScore: 75, CompletedAt: &done,
			Answers: types.StringMap{"gov-1": "yes", "sup-1": "partial"}},
		{ID: "a2", Name: "Onboarding", Status: types.StatusInProgress},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAssessments(&buf, list, bank, TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "2/15")
	assert.Contains(t, output, "0/15")
	assert.Contains(t, output, "in progress")
	assert.Contains(t, output, "2026-04-02")

	buf.Reset()
	list[0].SectionScores = types.ScoreMap{"governance": 100, "supplier": 50}
	require.NoError(t, WriteAssessment(&buf, &list[0], bank, TableConfig{}))
	output = buf.String()
	assert.Contains(t, output, "Answered: 2/15, Overall score: 75")
	assert.Contains(t, output, "Governance")
}

func TestWriteQuestions(t *testing.T) {
	bank := assessment.DefaultBank()
	var buf bytes.Buffer
	require.NoError(t, WriteQuestions(&buf, bank, map[string]string{"gov-1": "yes"}, TableConfig{}))
	output := buf.String()
	for _, s := range bank.Sections {
		assert.Contains(t, output, s.Title)
	}
	assert.Contains(t, output, "yes")
	assertOrder(t, output, "gov-1", "sup-1", "int-1", "vul-1", "inc-1")
}

func TestWriteFactorsAndRisk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFactors(&buf, risk.DefaultFactors, TableConfig{}))
	for _, f := range risk.DefaultFactors {
		assert.Contains(t, buf.String(), f.ID)
	}

	a, err := risk.ScoreFactors(map[string]int{"data_access": 5, "financial_stability": 1}, nil)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, WriteRiskAssessment(&buf, a, TableConfig{}))
	output := buf.String()
	assert.Contains(t, output, "Risk score:")
	assertOrder(t, output, "data_access", "financial_stability")
}

func TestLevelCell_Terminal(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, "Critical", levelCell(types.RiskCritical, false))
	colored := levelCell(types.RiskCritical, true)
	assert.NotEqual(t, "Critical", colored)
	assert.Contains(t, colored, "\x1b[")
	assert.Equal(t, "Unknown", levelCell("Unknown", true))
}

func TestIsOutputToTerminal_Buffer(t *testing.T) {
	assert.False(t, IsOutputToTerminal(&bytes.Buffer{}))
}

func assertOrder(t *testing.T, output string, items ...string) {
	t.Helper()
	prev := -1
	for _, item := range items {
		idx := strings.Index(output[prev+1:], item)
		require.NotEqual(t, -1, idx, "missing %q in output after position %d", item, prev)
		prev += idx + 1
	}
}
