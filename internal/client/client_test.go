// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vendor-risk/internal/types"
)

func newTestClient(url string, opts ...Option) *Client {
	opts = append([]Option{
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
		WithToken("secret-token"),
	}, opts...)
	return New(url, opts...)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([]types.Vendor{{ID: "v1", Name: "Acme"}})
	}))
	defer srv.Close()

	vendors, err := newTestClient(srv.URL).ListVendors(context.Background())
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Acme", vendors[0].Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"Too many requests. Please try again later."}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, WithMaxRetries(2)).ListVendors(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
	assert.Contains(t, err.Error(), "Too many requests")
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestGet_ClientErrorsArePermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetVendor(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not found", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPost_NeverRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateVendor(context.Background(), types.VendorInput{Name: "Acme"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, int32(1), calls.Load())
}

func TestAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newTestClient(srv.URL, WithTimeout(50*time.Millisecond), WithMaxRetries(1)).Dashboard(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUploadSBOM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sbom-analyses", r.URL.Path)
		assert.Equal(t, "bom.json", r.URL.Query().Get("filename"))
		assert.Equal(t, "v1", r.URL.Query().Get("vendor_id"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"bomFormat":"CycloneDX"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(types.SBOMAnalysis{ID: "a1", Filename: "bom.json", FileType: "CycloneDX"})
	}))
	defer srv.Close()

	a, err := newTestClient(srv.URL).UploadSBOM(context.Background(), "bom.json", []byte(`{"bomFormat":"CycloneDX"}`), "v1")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
}

func TestDelete_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/vendors/v%201", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).DeleteVendor(context.Background(), "v 1"))
}
