// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bonial-oss/vendor-risk/internal/auth"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

// upload is an SBOM document received either as multipart form data
// (field "file") or as a raw request body with a filename parameter.
type upload struct {
	filename string
	vendorID string
	data     []byte
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		return &upload{filename: header.Filename, vendorID: r.FormValue("vendor_id"), data: data}, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return &upload{filename: q.Get("filename"), vendorID: q.Get("vendor_id"), data: data}, nil
}

func (s *Server) handleUploadSBOM(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	up, err := s.readUpload(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("SBOM exceeds the %d byte upload limit", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}
	if up.filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if up.vendorID != "" {
		if _, err := s.store.Vendors.Get(r.Context(), u.ID, up.vendorID); err != nil {
			s.writeStoreError(w, r, err)
			return
		}
	}

	res, err := s.parser.Parse(r.Context(), up.data, up.filename)
	if err != nil {
		s.logger.Info("SBOM rejected", "filename", up.filename, "error", err)
		s.writeStoreError(w, r, err)
		return
	}

	summary := res.Summary()
	a := &types.SBOMAnalysis{
		UserID:               u.ID,
		VendorID:             up.vendorID,
		Filename:             up.filename,
		FileType:             res.Format.String(),
		TotalComponents:      summary.TotalComponents,
		TotalVulnerabilities: summary.TotalVulnerabilities,
		RiskScore:            summary.RiskScore,
		AnalysisData:         res.AnalysisData(),
	}
	if err := s.store.Analyses.Create(r.Context(), a); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.logger.Info("SBOM analyzed",
		"analysis_id", a.ID,
		"format", a.FileType,
		"components", a.TotalComponents,
		"vulnerabilities", a.TotalVulnerabilities,
		"risk_score", a.RiskScore,
	)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	limit, err := limitParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	analyses, err := s.store.Analyses.List(r.Context(), u.ID, r.URL.Query().Get("vendor_id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if limit > 0 && len(analyses) > limit {
		analyses = analyses[:limit]
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	a, err := s.store.Analyses.Get(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := s.store.Analyses.Delete(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
