// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package osv counts known vulnerabilities for SBOM packages using the
// OSV.dev query API, with a per-package disk cache.
package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/package-url/packageurl-go"

	"github.com/bonial-oss/vendor-risk/internal/cache"
	"github.com/bonial-oss/vendor-risk/internal/sbom"
)

const (
	DefaultURL      = "https://api.osv.dev/v1/query"
	maxResponseSize = 10 * 1024 * 1024 // 10 MB
	maxPages        = 10
)

// ecosystems maps purl types to OSV ecosystem names.
var ecosystems = map[string]string{
	"npm":      "npm",
	"pypi":     "PyPI",
	"golang":   "Go",
	"maven":    "Maven",
	"cargo":    "crates.io",
	"gem":      "RubyGems",
	"nuget":    "NuGet",
	"composer": "Packagist",
	"hex":      "Hex",
	"pub":      "Pub",
	"deb":      "Debian",
	"apk":      "Alpine",
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type queryRequest struct {
	Package   queryPackage `json:"package"`
	Version   string       `json:"version,omitempty"`
	PageToken string       `json:"page_token,omitempty"`
}

type queryResponse struct {
	Vulns []struct {
		ID string `json:"id"`
	} `json:"vulns"`
	NextPageToken string `json:"next_page_token"`
}

// cachedEntry is what gets written to disk per package.
type cachedEntry struct {
	IDs []string `json:"ids"`
}

// Source implements sbom.VulnerabilityCounter against OSV.
type Source struct {
	url    string
	client *http.Client
	cache  *cache.Cache
	logger *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

func WithURL(url string) Option { return func(s *Source) { s.url = url } }

func WithHTTPClient(c *http.Client) Option { return func(s *Source) { s.client = c } }

func WithLogger(l *slog.Logger) Option { return func(s *Source) { s.logger = l } }

// NewSource creates an OSV source with cache stored under cacheDir/osv/.
func NewSource(cacheDir string, ttl time.Duration, opts ...Option) *Source {
	s := &Source{
		url:    DefaultURL,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  cache.New(filepath.Join(cacheDir, "osv"), ttl),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ sbom.VulnerabilityCounter = (*Source)(nil)

// CountVulnerabilities returns the number of OSV advisories affecting pkg.
//
// Logic:
//  1. Packages without a purl of a known ecosystem count as 0.
//  2. If the cache entry is fresh -> use it.
//  3. Query the API; on success store the result and use it.
//  4. If the query fails and a stale entry exists -> warn, use it.
//  5. Otherwise return the error.
func (s *Source) CountVulnerabilities(ctx context.Context, pkg sbom.Package) (int, error) {
	q, ok := buildQuery(pkg)
	if !ok {
		s.logger.Debug("skipping OSV lookup, no usable purl", "package", pkg.Name, "purl", pkg.Purl)
		return 0, nil
	}
	key := q.Package.Ecosystem + ":" + q.Package.Name + "@" + q.Version

	if s.cache.IsFresh(key) {
		if n, err := s.loadCached(key); err == nil {
			return n, nil
		}
	}

	ids, err := s.query(ctx, q)
	if err == nil {
		data, mErr := json.Marshal(cachedEntry{IDs: ids})
		if mErr == nil {
			if storeErr := s.cache.Store(key, data); storeErr != nil {
				s.logger.Warn("failed to cache OSV result", "key", key, "error", storeErr)
			}
		}
		return len(ids), nil
	}

	if s.cache.Exists(key) {
		if n, cErr := s.loadCached(key); cErr == nil {
			s.logger.Warn("OSV query failed, using stale cache", "key", key, "error", err)
			return n, nil
		}
	}
	return 0, fmt.Errorf("querying OSV for %s: %w", key, err)
}

func (s *Source) loadCached(key string) (int, error) {
	data, err := s.cache.Load(key)
	if err != nil {
		return 0, err
	}
	var entry cachedEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return 0, fmt.Errorf("decoding cached OSV entry: %w", err)
	}
	return len(entry.IDs), nil
}

// buildQuery turns a purl into an OSV package query.
func buildQuery(pkg sbom.Package) (queryRequest, bool) {
	if pkg.Purl == "" {
		return queryRequest{}, false
	}
	purl, err := packageurl.FromString(pkg.Purl)
	if err != nil {
		return queryRequest{}, false
	}
	ecosystem, ok := ecosystems[purl.Type]
	if !ok {
		return queryRequest{}, false
	}

	name := purl.Name
	if purl.Namespace != "" {
		switch purl.Type {
		case "maven":
			name = purl.Namespace + ":" + purl.Name
		case "deb", "apk":
			// namespace is the distro vendor
		default:
			name = purl.Namespace + "/" + purl.Name
		}
	}

	version := purl.Version
	if version == "" {
		version = pkg.Version
	}
	return queryRequest{
		Package: queryPackage{Name: name, Ecosystem: ecosystem},
		Version: version,
	}, true
}

// query collects advisory ids across result pages.
func (s *Source) query(ctx context.Context, q queryRequest) ([]string, error) {
	ids := []string{}
	seen := make(map[string]bool)
	for page := 0; page < maxPages; page++ {
		resp, err := s.post(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, v := range resp.Vulns {
			if !seen[v.ID] {
				seen[v.ID] = true
				ids = append(ids, v.ID)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		q.PageToken = resp.NextPageToken
	}
	return ids, nil
}

func (s *Source) post(ctx context.Context, q queryRequest) (*queryResponse, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, s.url)
	}

	var out queryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding OSV response: %w", err)
	}
	return &out, nil
}
