// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package sbom

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

const unknownLicense = "Unknown"

const cycloneDXNamespacePrefix = "http://cyclonedx.org/schema/bom/"

func parseCycloneDXJSON(data []byte) (*Result, error) {
	bom, err := decodeCycloneDXJSON(data)
	if errors.Is(err, cdx.ErrInvalidSpecVersion) {
		// Newer schema versions than the library knows still share the
		// component and vulnerability shape; the caller keeps the raw version.
		var stripped []byte
		if stripped, err = withoutSpecVersion(data); err == nil {
			bom, err = decodeCycloneDXJSON(stripped)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding CycloneDX JSON: %w", ErrInvalidDocument, err)
	}
	res := mapCycloneDX(bom)
	res.Encoding = EncodingJSON
	return res, nil
}

func decodeCycloneDXJSON(data []byte) (*cdx.BOM, error) {
	var bom cdx.BOM
	if err := cdx.NewBOMDecoder(bytes.NewReader(data), cdx.BOMFileFormatJSON).Decode(&bom); err != nil {
		return nil, err
	}
	return &bom, nil
}

func withoutSpecVersion(data []byte) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	delete(doc, "specVersion")
	return json.Marshal(doc)
}

func parseCycloneDXXML(data []byte) (*Result, error) {
	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: invalid XML: %w", ErrInvalidDocument, err)
	}
	if probe.XMLName.Local != "bom" || !strings.HasPrefix(probe.XMLName.Space, cycloneDXNamespacePrefix) {
		return nil, ErrUnrecognizedFormat
	}

	var bom cdx.BOM
	if err := cdx.NewBOMDecoder(bytes.NewReader(data), cdx.BOMFileFormatXML).Decode(&bom); err != nil {
		return nil, fmt.Errorf("%w: decoding CycloneDX XML: %w", ErrInvalidDocument, err)
	}
	res := mapCycloneDX(&bom)
	res.Encoding = EncodingXML
	res.SpecVersion = path.Base(probe.XMLName.Space)
	return res, nil
}

func mapCycloneDX(bom *cdx.BOM) *Result {
	res := &Result{Format: FormatCycloneDX, Components: []types.Component{}}

	var components []cdx.Component
	if bom.Components != nil {
		components = *bom.Components
	}

	refs := make(map[string]bool, len(components))
	for _, c := range components {
		if c.BOMRef != "" {
			refs[c.BOMRef] = true
		}
	}

	counts := make(map[string]int)
	if bom.Vulnerabilities != nil {
		for _, v := range *bom.Vulnerabilities {
			if v.Affects == nil {
				continue
			}
			matched := false
			seen := make(map[string]bool)
			for _, a := range *v.Affects {
				if !refs[a.Ref] || seen[a.Ref] {
					continue
				}
				seen[a.Ref] = true
				counts[a.Ref]++
				matched = true
			}
			if matched {
				res.Vulnerabilities++
			}
		}
	}

	for i, c := range components {
		id := c.BOMRef
		if id == "" {
			id = fmt.Sprintf("component-%d", i+1)
		}
		vulns := 0
		if c.BOMRef != "" {
			vulns = counts[c.BOMRef]
		}
		comp := types.Component{
			ID:                 id,
			Name:               c.Name,
			Version:            c.Version,
			License:            cycloneDXLicense(c.Licenses),
			VulnerabilityCount: vulns,
			RiskScore:          risk.ComponentScore(vulns, c.Version),
			Purl:               c.PackageURL,
		}
		if c.Supplier != nil {
			comp.Supplier = c.Supplier.Name
		}
		res.Components = append(res.Components, comp)
	}
	return res
}

// cycloneDXLicense picks the first license id, then name, then expression.
func cycloneDXLicense(licenses *cdx.Licenses) string {
	if licenses == nil {
		return unknownLicense
	}
	for _, lic := range *licenses {
		if lic.License != nil && lic.License.ID != "" {
			return lic.License.ID
		}
	}
	for _, lic := range *licenses {
		if lic.License != nil && lic.License.Name != "" {
			return lic.License.Name
		}
	}
	for _, lic := range *licenses {
		if lic.Expression != "" {
			return lic.Expression
		}
	}
	return unknownLicense
}
