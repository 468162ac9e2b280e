// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bonial-oss/vendor-risk/internal/assessment"
	"github.com/bonial-oss/vendor-risk/internal/query"
	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/healthz", nil)
}

func (c *Client) SignUp(ctx context.Context, creds types.Credentials) (*types.Session, error) {
	var s types.Session
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/v1/signup", creds, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	var s types.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/v1/token", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Profile(ctx context.Context) (*types.Profile, error) {
	var p types.Profile
	if err := c.getJSON(ctx, "/api/v1/profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, patch types.ProfilePatch) (*types.Profile, error) {
	var p types.Profile
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/profile", patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitContact posts the public contact form.
func (c *Client) SubmitContact(ctx context.Context, msg types.ContactSubmission) (string, error) {
	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/functions/v1/contact-form", msg, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Vendors

func (c *Client) ListVendors(ctx context.Context) ([]types.Vendor, error) {
	var out []types.Vendor
	if err := c.getJSON(ctx, "/api/v1/vendors", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVendor(ctx context.Context, id string) (*types.Vendor, error) {
	var v types.Vendor
	if err := c.getJSON(ctx, "/api/v1/vendors/"+url.PathEscape(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) CreateVendor(ctx context.Context, in types.VendorInput) (*types.Vendor, error) {
	var v types.Vendor
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/vendors", in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateVendor(ctx context.Context, id string, patch types.VendorPatch) (*types.Vendor, error) {
	var v types.Vendor
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/v1/vendors/"+url.PathEscape(id), patch, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteVendor(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/v1/vendors/"+url.PathEscape(id), nil, nil)
}

func (c *Client) BulkVendors(ctx context.Context, req types.BulkVendorUpdate) (int, error) {
	var res types.BulkResult
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/vendors/bulk", req, &res); err != nil {
		return 0, err
	}
	return res.Affected, nil
}

func (c *Client) VendorStats(ctx context.Context) (*query.VendorStats, error) {
	var s query.VendorStats
	if err := c.getJSON(ctx, "/api/v1/vendors/stats", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SBOM analyses

// UploadSBOM sends a raw SBOM document for analysis.
func (c *Client) UploadSBOM(ctx context.Context, filename string, data []byte, vendorID string) (*types.SBOMAnalysis, error) {
	q := url.Values{"filename": {filename}}
	if vendorID != "" {
		q.Set("vendor_id", vendorID)
	}
	var a types.SBOMAnalysis
	req := request{
		method:      http.MethodPost,
		path:        "/api/v1/sbom-analyses?" + q.Encode(),
		raw:         data,
		contentType: "application/octet-stream",
	}
	if err := c.do(ctx, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListAnalyses(ctx context.Context, vendorID string) ([]types.SBOMAnalysis, error) {
	path := "/api/v1/sbom-analyses"
	if vendorID != "" {
		path += "?" + url.Values{"vendor_id": {vendorID}}.Encode()
	}
	var out []types.SBOMAnalysis
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id string) (*types.SBOMAnalysis, error) {
	var a types.SBOMAnalysis
	if err := c.getJSON(ctx, "/api/v1/sbom-analyses/"+url.PathEscape(id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAnalysis(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/v1/sbom-analyses/"+url.PathEscape(id), nil, nil)
}

// Assessments

func (c *Client) Questions(ctx context.Context) (*assessment.Bank, error) {
	var b assessment.Bank
	if err := c.getJSON(ctx, "/api/v1/assessments/questions", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ListAssessments(ctx context.Context) ([]types.Assessment, error) {
	var out []types.Assessment
	if err := c.getJSON(ctx, "/api/v1/assessments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAssessment(ctx context.Context, id string) (*types.Assessment, error) {
	var a types.Assessment
	if err := c.getJSON(ctx, "/api/v1/assessments/"+url.PathEscape(id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateAssessment(ctx context.Context, in types.AssessmentInput) (*types.Assessment, error) {
	var a types.Assessment
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/assessments", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) AnswerAssessment(ctx context.Context, id string, answers map[string]string) (*types.Assessment, error) {
	var a types.Assessment
	body := types.AnswersInput{Answers: answers}
	if err := c.sendJSON(ctx, http.MethodPut, "/api/v1/assessments/"+url.PathEscape(id)+"/answers", body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CompleteAssessment(ctx context.Context, id string) (*types.Assessment, error) {
	var a types.Assessment
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/assessments/"+url.PathEscape(id)+"/complete", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAssessment(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/v1/assessments/"+url.PathEscape(id), nil, nil)
}

// Risk and dashboard

func (c *Client) RiskFactors(ctx context.Context) ([]risk.Factor, error) {
	var out []risk.Factor
	if err := c.getJSON(ctx, "/api/v1/risk/factors", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CalculateRisk(ctx context.Context, ratings map[string]int) (*risk.Assessment, error) {
	var a risk.Assessment
	body := map[string]any{"factors": ratings}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/v1/risk/calculate", body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) Dashboard(ctx context.Context) (*query.Dashboard, error) {
	var d query.Dashboard
	if err := c.getJSON(ctx, "/api/v1/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}
