// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/sbom"
	"github.com/bonial-oss/vendor-risk/internal/store"
)

// maxJSONBody bounds JSON request bodies other than SBOM uploads.
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs the validator tags.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be a valid email address")
		case "url":
			parts = append(parts, field+" must be a valid URL")
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// writeStoreError maps domain errors to HTTP status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrCompleted),
		errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, errInvalidEnum), errors.Is(err, errScoreAndFactors), errors.Is(err, errNoAnswers),
		errors.Is(err, assessment.ErrUnknownQuestion), errors.Is(err, assessment.ErrInvalidAnswer),
		errors.Is(err, risk.ErrNoRatings), errors.Is(err, risk.ErrInvalidRating), errors.Is(err, risk.ErrUnknownFactor),
		errors.Is(err, sbom.ErrUnsupportedExtension), errors.Is(err, sbom.ErrEmptyInput):
		status = http.StatusBadRequest
	case errors.Is(err, sbom.ErrInvalidDocument), errors.Is(err, sbom.ErrUnrecognizedFormat):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, sbom.ErrVulnerabilityLookup):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
