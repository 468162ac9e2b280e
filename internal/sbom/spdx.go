// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package sbom

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

const (
	spdxNoAssertion = "NOASSERTION"
	spdxNone        = "NONE"
)

type spdxDocument struct {
	SPDXVersion string        `json:"spdxVersion"`
	Packages    []spdxPackage `json:"packages"`
}

type spdxPackage struct {
	SPDXID           string            `json:"SPDXID"`
	Name             string            `json:"name"`
	VersionInfo      string            `json:"versionInfo"`
	Supplier         string            `json:"supplier"`
	LicenseConcluded string            `json:"licenseConcluded"`
	LicenseDeclared  string            `json:"licenseDeclared"`
	ExternalRefs     []spdxExternalRef `json:"externalRefs"`
}

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

func (p *Parser) parseSPDXJSON(ctx context.Context, data []byte) (*Result, error) {
	var doc spdxDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding SPDX JSON: %w", ErrInvalidDocument, err)
	}
	res, err := p.mapSPDX(ctx, &doc)
	if err != nil {
		return nil, err
	}
	res.Encoding = EncodingJSON
	return res, nil
}

func isSPDXTagValue(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), "SPDXVersion:") {
			return true
		}
	}
	return false
}

// parseSPDXTagValue reads the line-oriented SPDX format. Multi-line <text>
// values are skipped since none of the package fields we map use them.
func (p *Parser) parseSPDXTagValue(ctx context.Context, data []byte) (*Result, error) {
	var doc spdxDocument
	var current *spdxPackage
	inText := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if inText {
			if strings.Contains(line, "</text>") {
				inText = false
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tag, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if strings.HasPrefix(value, "<text>") {
			if !strings.Contains(value, "</text>") {
				inText = true
			}
			continue
		}

		switch tag {
		case "SPDXVersion":
			doc.SPDXVersion = value
		case "PackageName":
			doc.Packages = append(doc.Packages, spdxPackage{Name: value})
			current = &doc.Packages[len(doc.Packages)-1]
		}
		if current == nil {
			continue
		}
		switch tag {
		case "SPDXID":
			current.SPDXID = value
		case "PackageVersion":
			current.VersionInfo = value
		case "PackageSupplier":
			current.Supplier = value
		case "PackageLicenseConcluded":
			current.LicenseConcluded = value
		case "PackageLicenseDeclared":
			current.LicenseDeclared = value
		case "ExternalRef":
			fields := strings.Fields(value)
			if len(fields) == 3 {
				current.ExternalRefs = append(current.ExternalRefs, spdxExternalRef{
					ReferenceCategory: fields[0],
					ReferenceType:     fields[1],
					ReferenceLocator:  fields[2],
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading SPDX tag-value: %w", ErrInvalidDocument, err)
	}

	res, err := p.mapSPDX(ctx, &doc)
	if err != nil {
		return nil, err
	}
	res.Encoding = EncodingTagValue
	return res, nil
}

func (p *Parser) mapSPDX(ctx context.Context, doc *spdxDocument) (*Result, error) {
	res := &Result{
		Format:      FormatSPDX,
		SpecVersion: strings.TrimPrefix(doc.SPDXVersion, "SPDX-"),
		Components:  make([]types.Component, 0, len(doc.Packages)),
	}

	for i, pkg := range doc.Packages {
		id := pkg.SPDXID
		if id == "" {
			id = fmt.Sprintf("package-%d", i+1)
		}
		purl := spdxPurl(pkg.ExternalRefs)

		vulns, err := p.counter.CountVulnerabilities(ctx, Package{
			Name:    pkg.Name,
			Version: pkg.VersionInfo,
			Purl:    purl,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s@%s: %w", ErrVulnerabilityLookup, pkg.Name, pkg.VersionInfo, err)
		}

		res.Components = append(res.Components, types.Component{
			ID:                 id,
			Name:               pkg.Name,
			Version:            pkg.VersionInfo,
			License:            spdxLicense(pkg),
			VulnerabilityCount: vulns,
			RiskScore:          risk.ComponentScore(vulns, pkg.VersionInfo),
			Purl:               purl,
			Supplier:           spdxSupplier(pkg.Supplier),
		})
		res.Vulnerabilities += vulns
	}
	return res, nil
}

func spdxLicense(pkg spdxPackage) string {
	for _, l := range []string{pkg.LicenseConcluded, pkg.LicenseDeclared} {
		if l != "" && l != spdxNoAssertion && l != spdxNone {
			return l
		}
	}
	return unknownLicense
}

func spdxPurl(refs []spdxExternalRef) string {
	for _, r := range refs {
		if r.ReferenceType == "purl" {
			return r.ReferenceLocator
		}
	}
	return ""
}

// spdxSupplier strips the "Organization: " / "Person: " prefix.
func spdxSupplier(s string) string {
	if s == "" || s == spdxNoAssertion {
		return ""
	}
	if _, name, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(name)
	}
	return s
}
