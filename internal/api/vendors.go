// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

// Values used when a new vendor carries neither a score nor factors.
const (
	defaultVendorScore      = 50
	defaultVendorCompliance = types.Partial
)

var (
	errInvalidEnum     = errors.New("invalid enum value")
	errScoreAndFactors = errors.New("risk_score and factors are mutually exclusive")
)

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	q := r.URL.Query()
	desc := strings.EqualFold(q.Get("order"), "desc")
	filter, err := query.ParseFilter(q.Get("search"), q["risk_level"], q["compliance"], q.Get("sort"), desc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vendors, err := s.store.Vendors.List(r.Context(), u.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, query.Apply(vendors, filter))
}

func (s *Server) handleVendorStats(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	vendors, err := s.store.Vendors.List(r.Context(), u.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, query.Stats(vendors))
}

func (s *Server) handleCreateVendor(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	var in types.VendorInput
	if !s.decodeAndValidate(w, r, &in) {
		return
	}
	v, err := newVendor(u.ID, in)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if err := s.store.Vendors.Create(r.Context(), v); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	v, err := s.store.Vendors.Get(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateVendor(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	var patch types.VendorPatch
	if !s.decodeAndValidate(w, r, &patch) {
		return
	}
	if err := normalizePatch(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	v, err := s.store.Vendors.Update(r.Context(), u.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVendor(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := s.store.Vendors.Delete(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkVendors(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	var req types.BulkVendorUpdate
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	var (
		affected int
		err      error
	)
	if req.Delete {
		affected, err = s.store.Vendors.BulkDelete(r.Context(), u.ID, req.IDs)
	} else {
		if err := normalizePatch(&req.Patch); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Patch.Empty() {
			writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}
		affected, err = s.store.Vendors.BulkUpdate(r.Context(), u.ID, req.IDs, req.Patch)
	}
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.logger.Info("bulk vendor action", "user_id", u.ID, "delete", req.Delete, "requested", len(req.IDs), "affected", affected)
	writeJSON(w, http.StatusOK, types.BulkResult{Affected: affected})
}

// newVendor turns create input into a vendor. A missing level is derived
// from the score.
func newVendor(userID string, in types.VendorInput) (*types.Vendor, error) {
	if in.RiskScore != nil && len(in.Factors) > 0 {
		return nil, errScoreAndFactors
	}
	v := &types.Vendor{
		UserID:             userID,
		Name:               strings.TrimSpace(in.Name),
		Industry:           in.Industry,
		Website:            in.Website,
		ContactEmail:       in.ContactEmail,
		RiskScore:          defaultVendorScore,
		RiskLevel:          in.RiskLevel,
		ComplianceStatus:   in.ComplianceStatus,
		LastAssessmentDate: in.LastAssessmentDate,
		Notes:              in.Notes,
	}

	switch {
	case len(in.Factors) > 0:
		a, err := risk.ScoreFactors(in.Factors, nil)
		if err != nil {
			return nil, err
		}
		v.RiskScore = a.Score
	case in.RiskScore != nil:
		v.RiskScore = *in.RiskScore
	}

	if v.RiskLevel == "" {
		v.RiskLevel = risk.LevelForScore(v.RiskScore)
	} else if !v.RiskLevel.Valid() {
		return nil, fmt.Errorf("%w: risk_level %q", errInvalidEnum, v.RiskLevel)
	}
	if v.ComplianceStatus == "" {
		v.ComplianceStatus = defaultVendorCompliance
	} else if !v.ComplianceStatus.Valid() {
		return nil, fmt.Errorf("%w: compliance_status %q", errInvalidEnum, v.ComplianceStatus)
	}
	return v, nil
}

// normalizePatch rejects unknown enum values and derives the risk level
// when only the score changes.
func normalizePatch(p *types.VendorPatch) error {
	if p.RiskLevel != nil && !p.RiskLevel.Valid() {
		return fmt.Errorf("%w: risk_level %q", errInvalidEnum, *p.RiskLevel)
	}
	if p.ComplianceStatus != nil && !p.ComplianceStatus.Valid() {
		return fmt.Errorf("%w: compliance_status %q", errInvalidEnum, *p.ComplianceStatus)
	}
	if p.RiskScore != nil && p.RiskLevel == nil {
		level := risk.LevelForScore(*p.RiskScore)
		p.RiskLevel = &level
	}
	return nil
}

// limitParam reads an optional positive integer query parameter.
func limitParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
