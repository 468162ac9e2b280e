// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// Assessment is a NIST 800-161 style supply chain self-assessment.
type Assessment struct {
	ID            string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string           `json:"user_id" gorm:"type:varchar(36);index;not null"`
	VendorID      string           `json:"vendor_id,omitempty" gorm:"type:varchar(36);index"`
	Name          string           `json:"assessment_name" gorm:"column:assessment_name;not null"`
	Answers       StringMap        `json:"answers" gorm:"type:text"`
	SectionScores ScoreMap         `json:"section_scores" gorm:"type:text"`
	OverallScore  int              `json:"overall_score"`
	Status        AssessmentStatus `json:"status" gorm:"type:varchar(16);not null;default:in_progress"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Assessment) TableName() string { return "supply_chain_assessments" }

// AssessmentInput is the payload for starting an assessment.
type AssessmentInput struct {
	Name     string `json:"assessment_name" validate:"required,max=200"`
	VendorID string `json:"vendor_id,omitempty"`
}

// AnswersInput merges answers into an in-progress assessment.
type AnswersInput struct {
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}
