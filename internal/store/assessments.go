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

// AssessmentStore provides database operations for supply chain assessments.
type AssessmentStore struct {
	db *gorm.DB
}

// NewAssessmentStore creates a new AssessmentStore.
func NewAssessmentStore(db *gorm.DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

func (s *AssessmentStore) List(ctx context.Context, userID string) ([]types.Assessment, error) {
	var out []types.Assessment
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}

func (s *AssessmentStore) Get(ctx context.Context, userID, id string) (*types.Assessment, error) {
	var a types.Assessment
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&a).Error; err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, notFound(err))
	}
	return &a, nil
}

// Create inserts a new in-progress assessment.
func (s *AssessmentStore) Create(ctx context.Context, a *types.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = types.StatusInProgress
	}
	if a.Answers == nil {
		a.Answers = types.StringMap{}
	}
	if a.SectionScores == nil {
		a.SectionScores = types.ScoreMap{}
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// Update loads an in-progress assessment, lets mutate change it and saves
// the result in one transaction. Completed assessments are never passed to
// mutate; ErrCompleted is returned instead.
func (s *AssessmentStore) Update(ctx context.Context, userID, id string, mutate func(*types.Assessment) error) (*types.Assessment, error) {
	var a types.Assessment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&a).Error; err != nil {
			return notFound(err)
		}
		if a.Status == types.StatusCompleted {
			return ErrCompleted
		}
		if err := mutate(&a); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update assessment %s: %w", id, err)
	}
	return &a, nil
}

func (s *AssessmentStore) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&types.Assessment{})
	if res.Error != nil {
		return fmt.Errorf("delete assessment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete assessment %s: %w", id, ErrNotFound)
	}
	return nil
}
