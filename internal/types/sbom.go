// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// Component is a normalized SBOM entry. It is derived from an uploaded
// document and only persisted inside an analysis' AnalysisData.
type Component struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Version            string `json:"version"`
	License            string `json:"license"`
	VulnerabilityCount int    `json:"vulnerabilityCount"`
	RiskScore          int    `json:"riskScore"`
	Purl               string `json:"purl,omitempty"`
	Supplier           string `json:"supplier,omitempty"`
}

// AnalysisData is the opaque blob stored with an SBOM analysis.
type AnalysisData struct {
	Format      string      `json:"format"`
	Encoding    string      `json:"encoding,omitempty"`
	SpecVersion string      `json:"specVersion,omitempty"`
	Components  []Component `json:"components"`
}

// SBOMAnalysis is the persisted result of one SBOM upload.
type SBOMAnalysis struct {
	ID                   string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID               string       `json:"user_id" gorm:"type:varchar(36);index;not null"`
	VendorID             string       `json:"vendor_id,omitempty" gorm:"type:varchar(36);index"`
	Filename             string       `json:"filename" gorm:"not null"`
	FileType             string       `json:"file_type" gorm:"type:varchar(16);not null"`
	TotalComponents      int          `json:"total_components"`
	TotalVulnerabilities int          `json:"total_vulnerabilities"`
	RiskScore            int          `json:"risk_score"`
	AnalysisData         AnalysisData `json:"analysis_data" gorm:"type:text"`
	CreatedAt            time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the GORM table name.
func (SBOMAnalysis) TableName() string { return "sbom_analyses" }
