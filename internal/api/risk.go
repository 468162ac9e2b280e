// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/risk"
)

type calculateRequest struct {
	Factors map[string]int `json:"factors" validate:"required,min=1"`
}

func (s *Server) handleCalculateRisk(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	a, err := risk.ScoreFactors(req.Factors, nil)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleRiskFactors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, risk.DefaultFactors)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	ctx := r.Context()

	vendors, err := s.store.Vendors.List(ctx, u.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	analyses, err := s.store.Analyses.List(ctx, u.ID, "")
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	assessments, err := s.store.Assessments.List(ctx, u.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, query.BuildDashboard(vendors, analyses, assessments))
}
