// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

// ProfileStore provides database operations for user profiles.
type ProfileStore struct {
	db *gorm.DB
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Create inserts p. Emails are stored lower-cased and must be unique.
func (s *ProfileStore) Create(ctx context.Context, p *types.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing types.Profile
		err := tx.Where("email = ?", p.Email).First(&existing).Error
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// A concurrent insert can still win between the check and here.
		return conflict(tx.Create(p).Error)
	})
	if err != nil {
		return fmt.Errorf("create profile %s: %w", p.Email, err)
	}
	return nil
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*types.Profile, error) {
	var p types.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, notFound(err))
	}
	return &p, nil
}

func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*types.Profile, error) {
	var p types.Profile
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, fmt.Errorf("get profile %s: %w", email, notFound(err))
	}
	return &p, nil
}

func (s *ProfileStore) Update(ctx context.Context, id string, patch types.ProfilePatch) (*types.Profile, error) {
	var p types.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return notFound(err)
		}
		if patch.FullName != nil {
			p.FullName = *patch.FullName
		}
		if patch.Company != nil {
			p.Company = *patch.Company
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, err)
	}
	return &p, nil
}

// ContactStore persists contact form submissions.
type ContactStore struct {
	db *gorm.DB
}

// NewContactStore creates a new ContactStore.
func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) Create(ctx context.Context, c *types.ContactSubmission) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create contact submission: %w", err)
	}
	return nil
}

// List returns the most recent submissions, up to limit (all when limit <= 0).
func (s *ContactStore) List(ctx context.Context, limit int) ([]types.ContactSubmission, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []types.ContactSubmission
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	return out, nil
}
