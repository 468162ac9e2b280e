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

// VendorStore provides database operations for vendors.
type VendorStore struct {
	db *gorm.DB
}

// NewVendorStore creates a new VendorStore.
func NewVendorStore(db *gorm.DB) *VendorStore {
	return &VendorStore{db: db}
}

// List returns the user's vendors, newest first.
func (s *VendorStore) List(ctx context.Context, userID string) ([]types.Vendor, error) {
	var vendors []types.Vendor
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&vendors).Error; err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

// Get loads one vendor.
func (s *VendorStore) Get(ctx context.Context, userID, id string) (*types.Vendor, error) {
	var v types.Vendor
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&v).Error; err != nil {
		return nil, fmt.Errorf("get vendor %s: %w", id, notFound(err))
	}
	return &v, nil
}

// Create inserts v, assigning an id when it has none.
func (s *VendorStore) Create(ctx context.Context, v *types.Vendor) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}

// Update applies patch to one vendor and returns the result.
func (s *VendorStore) Update(ctx context.Context, userID, id string, patch types.VendorPatch) (*types.Vendor, error) {
	var v types.Vendor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&v).Error; err != nil {
			return notFound(err)
		}
		patch.Apply(&v)
		return tx.Save(&v).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update vendor %s: %w", id, err)
	}
	return &v, nil
}

// Delete removes one vendor.
func (s *VendorStore) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&types.Vendor{})
	if res.Error != nil {
		return fmt.Errorf("delete vendor %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete vendor %s: %w", id, ErrNotFound)
	}
	return nil
}

// BulkUpdate applies patch to every listed vendor the user owns. Unknown
// ids are skipped; the number of updated vendors is returned.
func (s *VendorStore) BulkUpdate(ctx context.Context, userID string, ids []string, patch types.VendorPatch) (int, error) {
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vendors []types.Vendor
		if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Find(&vendors).Error; err != nil {
			return err
		}
		for i := range vendors {
			patch.Apply(&vendors[i])
			if err := tx.Save(&vendors[i]).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk update vendors: %w", err)
	}
	return updated, nil
}

// BulkDelete removes every listed vendor the user owns.
func (s *VendorStore) BulkDelete(ctx context.Context, userID string, ids []string) (int, error) {
	res := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&types.Vendor{})
	if res.Error != nil {
		return 0, fmt.Errorf("bulk delete vendors: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
