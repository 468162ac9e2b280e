// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"

	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

// VendorBackend persists vendors.
type VendorBackend interface {
	ListVendors(ctx context.Context) ([]types.Vendor, error)
	CreateVendor(ctx context.Context, in types.VendorInput) (*types.Vendor, error)
	UpdateVendor(ctx context.Context, id string, patch types.VendorPatch) (*types.Vendor, error)
	DeleteVendor(ctx context.Context, id string) error
	BulkVendors(ctx context.Context, req types.BulkVendorUpdate) (int, error)
}

// VendorState is the vendor list container.
type VendorState struct {
	base
	backend VendorBackend
	vendors []types.Vendor
}

// NewVendorState creates an empty container over backend.
func NewVendorState(backend VendorBackend) *VendorState {
	return &VendorState{backend: backend}
}

// Vendors returns a copy of the current list.
func (s *VendorState) Vendors() []types.Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Vendor, len(s.vendors))
	copy(out, s.vendors)
	return out
}

// Fetch replaces the list with the backend's.
func (s *VendorState) Fetch(ctx context.Context) error {
	s.begin()
	vendors, err := s.backend.ListVendors(ctx)
	return s.finish(err, func() { s.vendors = vendors })
}

// Create adds a vendor and prepends it to the list.
func (s *VendorState) Create(ctx context.Context, in types.VendorInput) (*types.Vendor, error) {
	s.begin()
	v, err := s.backend.CreateVendor(ctx, in)
	err = s.finish(err, func() {
		s.vendors = append([]types.Vendor{*v}, s.vendors...)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Update patches one vendor and replaces it in the list.
func (s *VendorState) Update(ctx context.Context, id string, patch types.VendorPatch) (*types.Vendor, error) {
	s.begin()
	v, err := s.backend.UpdateVendor(ctx, id, patch)
	err = s.finish(err, func() { s.replace(*v) })
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes one vendor.
func (s *VendorState) Delete(ctx context.Context, id string) error {
	s.begin()
	err := s.backend.DeleteVendor(ctx, id)
	return s.finish(err, func() { s.remove(id) })
}

// Bulk applies a bulk action, then refetches so every touched vendor is
// current.
func (s *VendorState) Bulk(ctx context.Context, req types.BulkVendorUpdate) (int, error) {
	s.begin()
	n, err := s.backend.BulkVendors(ctx, req)
	if err != nil {
		return 0, s.finish(err, nil)
	}
	vendors, err := s.backend.ListVendors(ctx)
	if err := s.finish(err, func() { s.vendors = vendors }); err != nil {
		return n, err
	}
	return n, nil
}

// Filtered returns the current vendors matching f, in f's order.
func (s *VendorState) Filtered(f query.VendorFilter) []types.Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.Apply(s.vendors, f)
}

func (s *VendorState) CountsByRiskLevel() map[types.RiskLevel]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.CountByRiskLevel(s.vendors)
}

func (s *VendorState) CountsByCompliance() map[types.ComplianceStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.CountByCompliance(s.vendors)
}

func (s *VendorState) Stats() query.VendorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.Stats(s.vendors)
}

// replace and remove expect s.mu to be held.
func (s *VendorState) replace(v types.Vendor) {
	for i := range s.vendors {
		if s.vendors[i].ID == v.ID {
			s.vendors[i] = v
			return
		}
	}
	s.vendors = append(s.vendors, v)
}

func (s *VendorState) remove(id string) {
	out := s.vendors[:0]
	for _, v := range s.vendors {
		if v.ID != id {
			out = append(out, v)
		}
	}
	s.vendors = out
}
