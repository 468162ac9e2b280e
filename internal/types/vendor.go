// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// Vendor is a third-party supplier tracked by a user.
type Vendor struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID             string           `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Name               string           `json:"name" gorm:"not null"`
	Industry           string           `json:"industry,omitempty"`
	Website            string           `json:"website,omitempty"`
	ContactEmail       string           `json:"contact_email,omitempty"`
	RiskScore          int              `json:"risk_score"`
	RiskLevel          RiskLevel        `json:"risk_level" gorm:"type:varchar(16);not null"`
	ComplianceStatus   ComplianceStatus `json:"compliance_status" gorm:"type:varchar(16);not null"`
	LastAssessmentDate *time.Time       `json:"last_assessment_date,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	CreatedAt          time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Vendor) TableName() string { return "vendors" }

// VendorInput is the payload for creating a vendor. RiskScore and Factors
// are mutually exclusive.
type VendorInput struct {
	Name               string           `json:"name" validate:"required,max=200"`
	Industry           string           `json:"industry,omitempty" validate:"max=100"`
	Website            string           `json:"website,omitempty" validate:"omitempty,url"`
	ContactEmail       string           `json:"contact_email,omitempty" validate:"omitempty,email"`
	RiskScore          *int             `json:"risk_score,omitempty" validate:"omitempty,min=0,max=100"`
	RiskLevel          RiskLevel        `json:"risk_level,omitempty"`
	ComplianceStatus   ComplianceStatus `json:"compliance_status,omitempty"`
	LastAssessmentDate *time.Time       `json:"last_assessment_date,omitempty"`
	Notes              string           `json:"notes,omitempty" validate:"max=5000"`
	Factors            map[string]int   `json:"factors,omitempty"`
}

// VendorPatch holds the fields of a partial or bulk vendor update. Nil
// fields are left untouched.
type VendorPatch struct {
	Name               *string           `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Industry           *string           `json:"industry,omitempty" validate:"omitempty,max=100"`
	Website            *string           `json:"website,omitempty" validate:"omitempty,url"`
	ContactEmail       *string           `json:"contact_email,omitempty" validate:"omitempty,email"`
	RiskScore          *int              `json:"risk_score,omitempty" validate:"omitempty,min=0,max=100"`
	RiskLevel          *RiskLevel        `json:"risk_level,omitempty"`
	ComplianceStatus   *ComplianceStatus `json:"compliance_status,omitempty"`
	LastAssessmentDate *time.Time        `json:"last_assessment_date,omitempty"`
	Notes              *string           `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// Empty reports whether the patch changes nothing.
func (p VendorPatch) Empty() bool {
	return p.Name == nil && p.Industry == nil && p.Website == nil && p.ContactEmail == nil &&
		p.RiskScore == nil && p.RiskLevel == nil && p.ComplianceStatus == nil &&
		p.LastAssessmentDate == nil && p.Notes == nil
}

// Apply copies every non-nil field of the patch onto v.
func (p VendorPatch) Apply(v *Vendor) {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Industry != nil {
		v.Industry = *p.Industry
	}
	if p.Website != nil {
		v.Website = *p.Website
	}
	if p.ContactEmail != nil {
		v.ContactEmail = *p.ContactEmail
	}
	if p.RiskScore != nil {
		v.RiskScore = *p.RiskScore
	}
	if p.RiskLevel != nil {
		v.RiskLevel = *p.RiskLevel
	}
	if p.ComplianceStatus != nil {
		v.ComplianceStatus = *p.ComplianceStatus
	}
	if p.LastAssessmentDate != nil {
		t := *p.LastAssessmentDate
		v.LastAssessmentDate = &t
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
}

// BulkVendorUpdate applies one patch to many vendors, or deletes them.
type BulkVendorUpdate struct {
	IDs    []string    `json:"ids" validate:"required,min=1,dive,required"`
	Patch  VendorPatch `json:"patch"`
	Delete bool        `json:"delete,omitempty"`
}

// BulkResult reports how many vendors a bulk action touched.
type BulkResult struct {
	Affected int `json:"affected"`
}
