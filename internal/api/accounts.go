// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type contactResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var creds types.Credentials
	if !s.decodeAndValidate(w, r, &creds) {
		return
	}
	session, err := s.auth.SignUp(r.Context(), creds)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.logger.Info("profile created", "user_id", session.User.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	session, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	p, err := s.auth.Profile(r.Context(), u)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	var patch types.ProfilePatch
	if !s.decodeAndValidate(w, r, &patch) {
		return
	}
	p, err := s.store.Profiles.Update(r.Context(), u.ID, patch)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleContactForm stores a public contact submission. It is the only
// unauthenticated write endpoint and sits behind the rate limiter.
func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	var c types.ContactSubmission
	if !s.decodeAndValidate(w, r, &c) {
		return
	}
	c.ID = ""
	if err := s.store.Contacts.Create(r.Context(), &c); err != nil {
		s.logger.Error("storing contact submission", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store submission")
		return
	}
	s.logger.Info("contact submission received", "id", c.ID, "topic", c.Topic)
	writeJSON(w, http.StatusOK, contactResponse{Success: true, ID: c.ID})
}
