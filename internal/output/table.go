// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	aqtable "github.com/aquasecurity/table"
	"github.com/aquasecurity/tml"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

const (
	maxNotesWords = 12
	dateLayout    = "2006-01-02"
)

// TableConfig controls table rendering.
type TableConfig struct {
	IsTerminal bool // true when output goes to a terminal (enables ANSI styling)
}

// IsOutputToTerminal returns true if the writer is stdout connected to a
// character device (TTY).
func IsOutputToTerminal(output io.Writer) bool {
	return output == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
}

// SBOMReport is a parsed document ready for display.
type SBOMReport struct {
	Title           string
	Format          string
	SpecVersion     string
	Components      []types.Component
	Vulnerabilities int
	RiskScore       int
}

// WriteComponents renders an SBOM report: a header, a one-line summary
// and the component table.
func WriteComponents(w io.Writer, report SBOMReport, cfg TableConfig) error {
	title := report.Title
	if report.Format != "" {
		format := report.Format
		if report.SpecVersion != "" {
			format += " " + report.SpecVersion
		}
		title = fmt.Sprintf("%s (%s)", report.Title, format)
	}
	writeHeader(w, title, cfg.IsTerminal)
	level := risk.LevelForScore(report.RiskScore)
	fmt.Fprintf(w, "Components: %d, Vulnerabilities: %d, Risk score: %d (%s)\n\n",
		len(report.Components), report.Vulnerabilities, report.RiskScore, levelCell(level, cfg.IsTerminal))

	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Component", "Version", "License", "Vulnerabilities", "Risk Score", "Risk")
	for _, c := range report.Components {
		tw.AddRow(
			c.Name,
			c.Version,
			c.License,
			strconv.Itoa(c.VulnerabilityCount),
			strconv.Itoa(c.RiskScore),
			levelCell(risk.LevelForScore(c.RiskScore), cfg.IsTerminal),
		)
	}
	tw.Render()
	return nil
}

// WriteVendors renders vendors in the given order with a risk level summary.
func WriteVendors(w io.Writer, vendors []types.Vendor, cfg TableConfig) error {
	fmt.Fprintln(w, riskLevelSummary(query.CountByRiskLevel(vendors), len(vendors)))
	fmt.Fprintln(w)

	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("ID", "Name", "Industry", "Risk Score", "Risk Level", "Compliance", "Last Assessment")
	for i := range vendors {
		v := &vendors[i]
		tw.AddRow(
			v.ID,
			v.Name,
			dash(v.Industry),
			strconv.Itoa(v.RiskScore),
			levelCell(v.RiskLevel, cfg.IsTerminal),
			complianceCell(v.ComplianceStatus, cfg.IsTerminal),
			formatDate(v.LastAssessmentDate),
		)
	}
	tw.Render()
	return nil
}

// WriteVendor renders a single vendor as a key/value table.
func WriteVendor(w io.Writer, v *types.Vendor, cfg TableConfig) error {
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetAutoMerge(false)
	tw.SetHeaders("Field", "Value")
	tw.AddRow("ID", v.ID)
	tw.AddRow("Name", v.Name)
	tw.AddRow("Industry", dash(v.Industry))
	tw.AddRow("Website", dash(v.Website))
	tw.AddRow("Contact", dash(v.ContactEmail))
	tw.AddRow("Risk Score", strconv.Itoa(v.RiskScore))
	tw.AddRow("Risk Level", levelCell(v.RiskLevel, cfg.IsTerminal))
	tw.AddRow("Compliance", complianceCell(v.ComplianceStatus, cfg.IsTerminal))
	tw.AddRow("Last Assessment", formatDate(v.LastAssessmentDate))
	tw.AddRow("Notes", dash(truncateWords(v.Notes, maxNotesWords)))
	tw.Render()
	return nil
}

// WriteVendorStats renders portfolio aggregates.
func WriteVendorStats(w io.Writer, s query.VendorStats, cfg TableConfig) error {
	writeHeader(w, "Vendor portfolio", cfg.IsTerminal)
	fmt.Fprintf(w, "Vendors: %d, Average risk score: %d, High risk: %d, Compliant: %d\n\n",
		s.Total, s.AverageRiskScore, s.HighRisk, s.Compliant)

	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Risk Level", "Vendors")
	for _, l := range types.RiskLevels {
		tw.AddRow(levelCell(l, cfg.IsTerminal), strconv.Itoa(s.ByRiskLevel[l]))
	}
	tw.Render()
	fmt.Fprintln(w)

	tw = newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Compliance", "Vendors")
	for _, c := range types.ComplianceStatuses {
		tw.AddRow(complianceCell(c, cfg.IsTerminal), strconv.Itoa(s.ByCompliance[c]))
	}
	tw.Render()
	return nil
}

// WriteDashboard renders the overview aggregates.
func WriteDashboard(w io.Writer, d *query.Dashboard, cfg TableConfig) error {
	if err := WriteVendorStats(w, d.Vendors, cfg); err != nil {
		return err
	}
	fmt.Fprintln(w)
	writeHeader(w, "SBOM analyses", cfg.IsTerminal)
	fmt.Fprintf(w, "Analyses: %d, Components: %d, Vulnerabilities: %d, Average risk score: %d\n\n",
		d.SBOM.Analyses, d.SBOM.TotalComponents, d.SBOM.TotalVulnerabilities, d.SBOM.AverageRiskScore)
	writeHeader(w, "Assessments", cfg.IsTerminal)
	fmt.Fprintf(w, "Total: %d, Completed: %d, In progress: %d, Average score: %d\n",
		d.Assessments.Total, d.Assessments.Completed, d.Assessments.InProgress, d.Assessments.AverageScore)
	if len(d.RecentVendors) > 0 {
		fmt.Fprintln(w)
		writeHeader(w, "Recently added vendors", cfg.IsTerminal)
		tw := newTableWriter(w, cfg.IsTerminal)
		tw.SetHeaders("Name", "Risk Level", "Added")
		for i := range d.RecentVendors {
			v := &d.RecentVendors[i]
			tw.AddRow(v.Name, levelCell(v.RiskLevel, cfg.IsTerminal), v.CreatedAt.Format(dateLayout))
		}
		tw.Render()
	}
	return nil
}

// WriteAnalyses renders stored SBOM analyses.
func WriteAnalyses(w io.Writer, analyses []types.SBOMAnalysis, cfg TableConfig) error {
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("ID", "File", "Format", "Components", "Vulnerabilities", "Risk Score", "Uploaded")
	for i := range analyses {
		a := &analyses[i]
		tw.AddRow(
			a.ID,
			a.Filename,
			a.FileType,
			strconv.Itoa(a.TotalComponents),
			strconv.Itoa(a.TotalVulnerabilities),
			fmt.Sprintf("%d (%s)", a.RiskScore, levelCell(risk.LevelForScore(a.RiskScore), cfg.IsTerminal)),
			a.CreatedAt.Format(dateLayout),
		)
	}
	tw.Render()
	return nil
}

// WriteContacts renders contact form submissions, newest first.
func WriteContacts(w io.Writer, list []types.ContactSubmission, cfg TableConfig) error {
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetAutoMerge(false)
	tw.SetHeaders("Received", "Name", "Email", "Company", "Topic", "Message")
	for i := range list {
		c := &list[i]
		tw.AddRow(
			c.CreatedAt.Format("2006-01-02 15:04"),
			c.FirstName+" "+c.LastName,
			c.Email,
			dash(c.Company),
			dash(c.Topic),
			truncateWords(c.Message, 12),
		)
	}
	tw.Render()
	return nil
}

// WriteAssessments renders assessments with answer progress against bank.
func WriteAssessments(w io.Writer, list []types.Assessment, bank *assessment.Bank, cfg TableConfig) error {
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("ID", "Name", "Status", "Progress", "Score", "Completed")
	for i := range list {
		a := &list[i]
		answered, total := bank.Progress(a.Answers)
		completed := "-"
		if a.CompletedAt != nil {
			completed = a.CompletedAt.Format(dateLayout)
		}
		tw.AddRow(
			a.ID,
			a.Name,
			statusCell(a.Status, cfg.IsTerminal),
			fmt.Sprintf("%d/%d", answered, total),
			strconv.Itoa(a.OverallScore),
			completed,
		)
	}
	tw.Render()
	return nil
}

// WriteAssessment renders one assessment's section scores.
func WriteAssessment(w io.Writer, a *types.Assessment, bank *assessment.Bank, cfg TableConfig) error {
	writeHeader(w, a.Name, cfg.IsTerminal)
	answered, total := bank.Progress(a.Answers)
	fmt.Fprintf(w, "Status: %s, Answered: %d/%d, Overall score: %d\n\n",
		statusCell(a.Status, cfg.IsTerminal), answered, total, a.OverallScore)

	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Section", "Score")
	for _, s := range bank.Sections {
		score, ok := a.SectionScores[s.ID]
		cell := "-"
		if ok {
			cell = strconv.Itoa(score)
		}
		tw.AddRow(s.Title, cell)
	}
	tw.Render()
	return nil
}

// WriteQuestions renders the questionnaire grouped by section. Answers,
// when given, are shown next to each question.
func WriteQuestions(w io.Writer, bank *assessment.Bank, answers map[string]string, cfg TableConfig) error {
	for i, s := range bank.Sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeHeader(w, s.Title, cfg.IsTerminal)
		if s.Description != "" {
			fmt.Fprintln(w, s.Description)
			fmt.Fprintln(w)
		}
		tw := newTableWriter(w, cfg.IsTerminal)
		tw.SetHeaders("ID", "Question", "Answer")
		for _, q := range s.Questions {
			tw.AddRow(q.ID, q.Text, dash(answers[q.ID]))
		}
		tw.Render()
	}
	return nil
}

// WriteFactors renders the weighted risk factors.
func WriteFactors(w io.Writer, factors []risk.Factor, cfg TableConfig) error {
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Factor", "Name", "Weight", "Description")
	for _, f := range factors {
		tw.AddRow(f.ID, f.Name, strconv.FormatFloat(f.Weight, 'f', -1, 64), f.Description)
	}
	tw.Render()
	return nil
}

// WriteRiskAssessment renders a factor score and its breakdown.
func WriteRiskAssessment(w io.Writer, a *risk.Assessment, cfg TableConfig) error {
	fmt.Fprintf(w, "Risk score: %d (%s)\n\n", a.Score, levelCell(a.Level, cfg.IsTerminal))
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Factor", "Rating", "Weight", "Weighted")
	breakdown := make([]risk.FactorContribution, len(a.Breakdown))
	copy(breakdown, a.Breakdown)
	sort.SliceStable(breakdown, func(i, j int) bool { return breakdown[i].Weighted > breakdown[j].Weighted })
	for _, c := range breakdown {
		tw.AddRow(c.Factor, strconv.Itoa(c.Rating),
			strconv.FormatFloat(c.Weight, 'f', -1, 64),
			strconv.FormatFloat(c.Weighted, 'f', 1, 64))
	}
	tw.Render()
	return nil
}

// writeHeader writes a title, underlined on terminals.
func writeHeader(w io.Writer, title string, isTerminal bool) {
	if isTerminal {
		_ = tml.Fprintf(w, "<underline><bold>%s</bold></underline>\n", title)
		return
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", utf8.RuneCountInString(title)))
}

// newTableWriter creates a table writer with borders, auto-merge and row
// separators. When isTerminal is true, header and line styles use ANSI
// formatting.
func newTableWriter(w io.Writer, isTerminal bool) *aqtable.Table {
	tw := aqtable.New(w)
	if isTerminal {
		tw.SetHeaderStyle(aqtable.StyleBold)
		tw.SetLineStyle(aqtable.StyleDim)
	}
	tw.SetBorders(true)
	tw.SetAutoMerge(true)
	tw.SetRowLines(true)
	return tw
}

// riskLevelSummary returns a line like:
// Total: 5 (Low: 2, Medium: 1, High: 1, Critical: 1)
func riskLevelSummary(counts map[types.RiskLevel]int, total int) string {
	return fmt.Sprintf("Total: %d (Low: %d, Medium: %d, High: %d, Critical: %d)",
		total, counts[types.RiskLow], counts[types.RiskMedium], counts[types.RiskHigh], counts[types.RiskCritical])
}

var levelColors = map[types.RiskLevel]func(a ...any) string{
	types.RiskLow:      color.New(color.FgGreen).SprintFunc(),
	types.RiskMedium:   color.New(color.FgYellow).SprintFunc(),
	types.RiskHigh:     color.New(color.FgHiRed).SprintFunc(),
	types.RiskCritical: color.New(color.FgRed, color.Bold).SprintFunc(),
}

var complianceColors = map[types.ComplianceStatus]func(a ...any) string{
	types.Compliant:    color.New(color.FgGreen).SprintFunc(),
	types.Partial:      color.New(color.FgYellow).SprintFunc(),
	types.NonCompliant: color.New(color.FgRed).SprintFunc(),
}

func levelCell(l types.RiskLevel, isTerminal bool) string {
	if fn, ok := levelColors[l]; ok && isTerminal {
		return fn(string(l))
	}
	return string(l)
}

func complianceCell(c types.ComplianceStatus, isTerminal bool) string {
	if fn, ok := complianceColors[c]; ok && isTerminal {
		return fn(string(c))
	}
	return string(c)
}

func statusCell(s types.AssessmentStatus, isTerminal bool) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	if !isTerminal {
		return label
	}
	if s == types.StatusCompleted {
		return tml.Sprintf("<green>%s</green>", label)
	}
	return tml.Sprintf("<yellow>%s</yellow>", label)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(dateLayout)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateWords limits text to maxWords words, appending "..." if truncated.
func truncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
