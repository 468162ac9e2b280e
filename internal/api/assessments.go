// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

var errNoAnswers = errors.New("assessment has no answers")

func (s *Server) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bank)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	list, err := s.store.Assessments.List(r.Context(), u.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := list[:0]
		for _, a := range list {
			if string(a.Status) == status {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	var in types.AssessmentInput
	if !s.decodeAndValidate(w, r, &in) {
		return
	}
	if in.VendorID != "" {
		if _, err := s.store.Vendors.Get(r.Context(), u.ID, in.VendorID); err != nil {
			s.writeStoreError(w, r, err)
			return
		}
	}
	a := &types.Assessment{
		UserID:   u.ID,
		VendorID: in.VendorID,
		Name:     strings.TrimSpace(in.Name),
	}
	if err := s.store.Assessments.Create(r.Context(), a); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	a, err := s.store.Assessments.Get(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := s.store.Assessments.Delete(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnswerAssessment merges answers into an in-progress assessment and
// rescores it.
func (s *Server) handleAnswerAssessment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	var in types.AnswersInput
	if !s.decodeAndValidate(w, r, &in) {
		return
	}
	normalized, err := s.bank.Validate(in.Answers)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	a, err := s.store.Assessments.Update(r.Context(), u.ID, chi.URLParam(r, "id"), func(a *types.Assessment) error {
		merged := make(types.StringMap, len(a.Answers)+len(normalized))
		for id, ans := range a.Answers {
			merged[id] = ans
		}
		for id, ans := range normalized {
			merged[id] = ans
		}
		res, err := s.bank.Score(merged)
		if err != nil {
			return err
		}
		a.Answers = merged
		a.SectionScores = res.SectionScores
		a.OverallScore = res.Overall
		return nil
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCompleteAssessment finalizes an assessment. The linked vendor, if
// any, gets its last assessment date bumped.
func (s *Server) handleCompleteAssessment(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	now := time.Now().UTC()

	a, err := s.store.Assessments.Update(r.Context(), u.ID, chi.URLParam(r, "id"), func(a *types.Assessment) error {
		if len(a.Answers) == 0 {
			return errNoAnswers
		}
		res, err := s.bank.Score(a.Answers)
		if err != nil {
			return err
		}
		a.SectionScores = res.SectionScores
		a.OverallScore = res.Overall
		a.Status = types.StatusCompleted
		a.CompletedAt = &now
		return nil
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	if a.VendorID != "" {
		patch := types.VendorPatch{LastAssessmentDate: &now}
		if _, err := s.store.Vendors.Update(r.Context(), u.ID, a.VendorID, patch); err != nil {
			s.logger.Warn("updating vendor assessment date", "vendor_id", a.VendorID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, a)
}
