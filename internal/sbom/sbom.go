// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package sbom detects and normalizes CycloneDX and SPDX documents into a
// flat list of components with vulnerability counts and risk scores.
package sbom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

type Format int

const (
	FormatCycloneDX Format = iota
	FormatSPDX
)

func (f Format) String() string {
	switch f {
	case FormatCycloneDX:
		return "CycloneDX"
	case FormatSPDX:
		return "SPDX"
	default:
		return "unknown"
	}
}

type Encoding string

const (
	EncodingJSON     Encoding = "json"
	EncodingXML      Encoding = "xml"
	EncodingTagValue Encoding = "tag-value"
)

var (
	ErrEmptyInput           = errors.New("empty SBOM document")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrInvalidDocument      = errors.New("malformed SBOM document")
	ErrUnrecognizedFormat   = errors.New("unrecognized SBOM format: not CycloneDX or SPDX")
	ErrVulnerabilityLookup  = errors.New("vulnerability lookup failed")
)

// AllowedExtensions lists the file extensions accepted for upload.
var AllowedExtensions = []string{".json", ".xml", ".txt", ".spdx", ".cdx"}

// Result is the outcome of a successful parse. Format tells which schema
// family the components were mapped from.
type Result struct {
	Format      Format
	Encoding    Encoding
	SpecVersion string
	Components  []types.Component
	// Vulnerabilities is the number of distinct vulnerabilities that
	// affect at least one component.
	Vulnerabilities int
}

// Summary totals the result for persistence as an analysis.
func (r *Result) Summary() risk.Summary {
	s := risk.Summarize(r.Components)
	s.TotalVulnerabilities = r.Vulnerabilities
	return s
}

// AnalysisData builds the blob stored alongside an analysis.
func (r *Result) AnalysisData() types.AnalysisData {
	return types.AnalysisData{
		Format:      r.Format.String(),
		Encoding:    string(r.Encoding),
		SpecVersion: r.SpecVersion,
		Components:  r.Components,
	}
}

// Parser turns raw SBOM documents into component lists.
type Parser struct {
	counter VulnerabilityCounter
}

// Option configures a Parser.
type Option func(*Parser)

// WithVulnerabilityCounter sets the source of vulnerability counts for SPDX
// packages, which carry no vulnerability data of their own.
func WithVulnerabilityCounter(c VulnerabilityCounter) Option {
	return func(p *Parser) {
		if c != nil {
			p.counter = c
		}
	}
}

// NewParser creates a parser. Without options SPDX vulnerability counts
// come from HashCounter.
func NewParser(opts ...Option) *Parser {
	p := &Parser{counter: HashCounter{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse detects the document format and maps it into components. A
// filename of "" or "-" skips the extension check.
func Parse(data []byte, filename string) (*Result, error) {
	return NewParser().Parse(context.Background(), data, filename)
}

// Parse detects the document format and maps it into components.
func (p *Parser) Parse(ctx context.Context, data []byte, filename string) (*Result, error) {
	if err := CheckExtension(filename); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}

	switch {
	case trimmed[0] == '{':
		return p.parseJSON(ctx, trimmed)
	case trimmed[0] == '<':
		return parseCycloneDXXML(trimmed)
	case isSPDXTagValue(trimmed):
		return p.parseSPDXTagValue(ctx, trimmed)
	default:
		return nil, ErrUnrecognizedFormat
	}
}

var utf8BOM = []byte("\xef\xbb\xbf")

// CheckExtension validates the filename against AllowedExtensions.
func CheckExtension(filename string) error {
	if filename == "" || filename == "-" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedExtension, ext, strings.Join(AllowedExtensions, ", "))
}

func (p *Parser) parseJSON(ctx context.Context, data []byte) (*Result, error) {
	// Probe the JSON to detect format
	var probe struct {
		BOMFormat   string  `json:"bomFormat"`
		SpecVersion string  `json:"specVersion"`
		SPDXVersion *string `json:"spdxVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %w", ErrInvalidDocument, err)
	}

	switch {
	case probe.BOMFormat == "CycloneDX":
		res, err := parseCycloneDXJSON(data)
		if err != nil {
			return nil, err
		}
		res.SpecVersion = probe.SpecVersion
		return res, nil
	case probe.SPDXVersion != nil:
		return p.parseSPDXJSON(ctx, data)
	default:
		return nil, ErrUnrecognizedFormat
	}
}
