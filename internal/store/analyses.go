// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

// AnalysisStore provides database operations for SBOM analyses. Analyses
// are immutable once created.
type AnalysisStore struct {
	db *gorm.DB
}

// NewAnalysisStore creates a new AnalysisStore.
func NewAnalysisStore(db *gorm.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// List returns the user's analyses, newest first, optionally limited to
// one vendor.
func (s *AnalysisStore) List(ctx context.Context, userID, vendorID string) ([]types.SBOMAnalysis, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if vendorID != "" {
		q = q.Where("vendor_id = ?", vendorID)
	}
	var analyses []types.SBOMAnalysis
	if err := q.Order("created_at DESC").Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return analyses, nil
}

func (s *AnalysisStore) Get(ctx context.Context, userID, id string) (*types.SBOMAnalysis, error) {
	var a types.SBOMAnalysis
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&a).Error; err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, notFound(err))
	}
	return &a, nil
}

func (s *AnalysisStore) Create(ctx context.Context, a *types.SBOMAnalysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}
	return nil
}

func (s *AnalysisStore) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&types.SBOMAnalysis{})
	if res.Error != nil {
		return fmt.Errorf("delete analysis %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete analysis %s: %w", id, ErrNotFound)
	}
	return nil
}
