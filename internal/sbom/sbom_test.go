// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package sbom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CycloneDXSingleComponentNoVulns(t *testing.T) {
	data := []byte(`{"bomFormat":"CycloneDX","specVersion":"1.4","components":[{"name":"a","version":"1.0"}]}`)

	result, err := Parse(data, "bom.json")
	require.NoError(t, err)

	assert.Equal(t, FormatCycloneDX, result.Format)
	assert.Equal(t, EncodingJSON, result.Encoding)
	assert.Equal(t, "1.4", result.SpecVersion)
	require.Len(t, result.Components, 1)
	assert.Equal(t, "a", result.Components[0].Name)
	assert.Equal(t, "1.0", result.Components[0].Version)
	assert.Equal(t, 0, result.Components[0].VulnerabilityCount)
	assert.Equal(t, 75, result.Components[0].RiskScore)
	assert.Equal(t, "Unknown", result.Components[0].License)
}

func TestParse_CycloneDXNewerSpecVersion(t *testing.T) {
	data := []byte(`{"bomFormat":"CycloneDX","specVersion":"1.7","components":[{"name":"a","version":"1.0"},{"name":"b","version":"2.0-beta"}]}`)

	result, err := Parse(data, "bom.cdx.json")
	require.NoError(t, err)

	assert.Equal(t, FormatCycloneDX, result.Format)
	assert.Equal(t, "1.7", result.SpecVersion)
	require.Len(t, result.Components, 2)
	assert.Equal(t, "a", result.Components[0].Name)
	assert.Equal(t, 75, result.Components[0].RiskScore)
}

func TestParse_ByteOrderMark(t *testing.T) {
	data := []byte("\xef\xbb\xbf" + `{"bomFormat":"CycloneDX","specVersion":"1.5","components":[{"name":"a","version":"1.0"}]}`)

	result, err := Parse(data, "bom.json")
	require.NoError(t, err)
	assert.Equal(t, FormatCycloneDX, result.Format)
	require.Len(t, result.Components, 1)

	_, err = Parse([]byte("\xef\xbb\xbf  "), "bom.json")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParse_CycloneDXVulnerabilityCrossReference(t *testing.T) {
	data := []byte(`{
		"bomFormat": "CycloneDX",
		"specVersion": "1.5",
		"components": [
			{"bom-ref": "pkg-a", "name": "a", "version": "1.0", "licenses": [{"license": {"id": "MIT"}}]},
			{"bom-ref": "pkg-b", "name": "b", "version": "2.0-beta", "licenses": [{"expression": "Apache-2.0 OR MIT"}]},
			{"bom-ref": "pkg-c", "name": "c", "version": "3.0", "supplier": {"name": "Acme"}, "purl": "pkg:npm/c@3.0"}
		],
		"vulnerabilities": [
			{"id": "CVE-1", "affects": [{"ref": "pkg-a"}]},
			{"id": "CVE-2", "affects": [{"ref": "pkg-a"}, {"ref": "pkg-b"}, {"ref": "pkg-a"}]},
			{"id": "CVE-3", "affects": [{"ref": "pkg-unknown"}]},
			{"id": "CVE-4"}
		]
	}`)

	result, err := Parse(data, "")
	require.NoError(t, err)
	require.Len(t, result.Components, 3)

	a, b, c := result.Components[0], result.Components[1], result.Components[2]
	assert.Equal(t, "pkg-a", a.ID)
	assert.Equal(t, 2, a.VulnerabilityCount)
	assert.Equal(t, 45, a.RiskScore)
	assert.Equal(t, "MIT", a.License)

	assert.Equal(t, 1, b.VulnerabilityCount)
	assert.Equal(t, 55, b.RiskScore)
	assert.Equal(t, "Apache-2.0 OR MIT", b.License)

	assert.Equal(t, 0, c.VulnerabilityCount)
	assert.Equal(t, "Acme", c.Supplier)
	assert.Equal(t, "pkg:npm/c@3.0", c.Purl)

	assert.Equal(t, 2, result.Vulnerabilities)
	summary := result.Summary()
	assert.Equal(t, 3, summary.TotalComponents)
	assert.Equal(t, 2, summary.TotalVulnerabilities)
	assert.Equal(t, 58, summary.RiskScore) // (45+55+75)/3
}

func TestParse_CycloneDXWithoutComponents(t *testing.T) {
	result, err := Parse([]byte(`{"bomFormat":"CycloneDX","specVersion":"1.4"}`), "bom.cdx")
	require.NoError(t, err)
	assert.Empty(t, result.Components)
	assert.Equal(t, 100, result.Summary().RiskScore)
}

func TestParse_CycloneDXXML(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<bom xmlns="http://cyclonedx.org/schema/bom/1.4" version="1">
  <components>
    <component type="library" bom-ref="pkg-x">
      <name>x</name>
      <version>1.0.0-alpha</version>
      <licenses><license><id>BSD-3-Clause</id></license></licenses>
    </component>
  </components>
  <vulnerabilities>
    <vulnerability>
      <id>CVE-9</id>
      <affects><target><ref>pkg-x</ref></target></affects>
    </vulnerability>
  </vulnerabilities>
</bom>`)

	result, err := Parse(data, "bom.xml")
	require.NoError(t, err)

	assert.Equal(t, FormatCycloneDX, result.Format)
	assert.Equal(t, EncodingXML, result.Encoding)
	assert.Equal(t, "1.4", result.SpecVersion)
	require.Len(t, result.Components, 1)
	assert.Equal(t, "x", result.Components[0].Name)
	assert.Equal(t, "BSD-3-Clause", result.Components[0].License)
	assert.Equal(t, 1, result.Components[0].VulnerabilityCount)
	assert.Equal(t, 50, result.Components[0].RiskScore)
}

func TestParse_XMLNotCycloneDX(t *testing.T) {
	_, err := Parse([]byte(`<project><name>x</name></project>`), "pom.xml")
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

type fixedCounter map[string]int

func (f fixedCounter) CountVulnerabilities(_ context.Context, pkg Package) (int, error) {
	return f[pkg.Name], nil
}

func TestParse_SPDXJSON(t *testing.T) {
	data := []byte(`{
		"spdxVersion": "SPDX-2.3",
		"packages": [
			{"SPDXID": "SPDXRef-a", "name": "a", "versionInfo": "1.0", "licenseConcluded": "NOASSERTION", "licenseDeclared": "MIT",
			 "supplier": "Organization: Acme", "externalRefs": [{"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:npm/a@1.0"}]},
			{"SPDXID": "SPDXRef-b", "name": "b", "versionInfo": "2.0", "licenseConcluded": "Apache-2.0"},
			{"name": "c", "versionInfo": "3.0", "licenseConcluded": "NONE", "licenseDeclared": "NOASSERTION"}
		]
	}`)

	p := NewParser(WithVulnerabilityCounter(fixedCounter{"a": 1, "b": 3}))
	result, err := p.Parse(context.Background(), data, "sbom.spdx")
	require.NoError(t, err)

	assert.Equal(t, FormatSPDX, result.Format)
	assert.Equal(t, "2.3", result.SpecVersion)
	require.Len(t, result.Components, 3)

	assert.Equal(t, "SPDXRef-a", result.Components[0].ID)
	assert.Equal(t, "MIT", result.Components[0].License)
	assert.Equal(t, "Acme", result.Components[0].Supplier)
	assert.Equal(t, "pkg:npm/a@1.0", result.Components[0].Purl)
	assert.Equal(t, 60, result.Components[0].RiskScore)

	assert.Equal(t, "Apache-2.0", result.Components[1].License)
	assert.Equal(t, 30, result.Components[1].RiskScore)

	assert.Equal(t, "package-3", result.Components[2].ID)
	assert.Equal(t, "Unknown", result.Components[2].License)
	assert.Equal(t, 4, result.Vulnerabilities)
}

func TestParse_SPDXTagValueMatchesJSON(t *testing.T) {
	tagValue := []byte(`SPDXVersion: SPDX-2.3
DataLicense: CC0-1.0
SPDXID: SPDXRef-DOCUMENT
DocumentComment: <text>spans
several lines: with colons
</text>

PackageName: a
SPDXID: SPDXRef-a
PackageVersion: 1.0
PackageSupplier: Organization: Acme
PackageLicenseConcluded: NOASSERTION
PackageLicenseDeclared: MIT
ExternalRef: PACKAGE-MANAGER purl pkg:npm/a@1.0

PackageName: b
SPDXID: SPDXRef-b
PackageVersion: 2.0
PackageLicenseConcluded: Apache-2.0
`)
	jsonDoc := []byte(`{
		"spdxVersion": "SPDX-2.3",
		"packages": [
			{"SPDXID": "SPDXRef-a", "name": "a", "versionInfo": "1.0", "licenseConcluded": "NOASSERTION", "licenseDeclared": "MIT",
			 "supplier": "Organization: Acme", "externalRefs": [{"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:npm/a@1.0"}]},
			{"SPDXID": "SPDXRef-b", "name": "b", "versionInfo": "2.0", "licenseConcluded": "Apache-2.0"}
		]
	}`)

	fromTags, err := Parse(tagValue, "sbom.spdx")
	require.NoError(t, err)
	fromJSON, err := Parse(jsonDoc, "sbom.json")
	require.NoError(t, err)

	assert.Equal(t, EncodingTagValue, fromTags.Encoding)
	assert.Equal(t, EncodingJSON, fromJSON.Encoding)
	assert.Equal(t, fromJSON.SpecVersion, fromTags.SpecVersion)
	assert.Equal(t, fromJSON.Components, fromTags.Components)
}

func TestParse_SPDXCounterError(t *testing.T) {
	failing := counterFunc(func(context.Context, Package) (int, error) {
		return 0, errors.New("boom")
	})
	p := NewParser(WithVulnerabilityCounter(failing))

	_, err := p.Parse(context.Background(), []byte(`{"spdxVersion":"SPDX-2.3","packages":[{"name":"a"}]}`), "")
	assert.ErrorIs(t, err, ErrVulnerabilityLookup)
}

type counterFunc func(context.Context, Package) (int, error)

func (f counterFunc) CountVulnerabilities(ctx context.Context, pkg Package) (int, error) {
	return f(ctx, pkg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		filename string
		want     error
	}{
		{"empty", "", "bom.json", ErrEmptyInput},
		{"whitespace", "  \n\t", "bom.json", ErrEmptyInput},
		{"bad extension", `{"bomFormat":"CycloneDX"}`, "bom.exe", ErrUnsupportedExtension},
		{"malformed json", `{"bomFormat": "CycloneDX",`, "bom.json", ErrInvalidDocument},
		{"unknown json", `{"hello": "world"}`, "bom.json", ErrUnrecognizedFormat},
		{"plain text", "just some text", "notes.txt", ErrUnrecognizedFormat},
		{"malformed xml", `<bom xmlns="http://cyclonedx.org/schema/bom/1.4"><components>`, "bom.xml", ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse([]byte(tt.data), tt.filename)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, result)
		})
	}
}

func TestCheckExtension(t *testing.T) {
	for _, name := range []string{"", "-", "a.json", "A.JSON", "b.xml", "c.txt", "d.spdx", "e.cdx"} {
		assert.NoError(t, CheckExtension(name), name)
	}
	for _, name := range []string{"a.yaml", "b", "c.json.gz"} {
		assert.ErrorIs(t, CheckExtension(name), ErrUnsupportedExtension, name)
	}
}

func TestHashCounter_Deterministic(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"lodash", "react", "left-pad", "openssl", "zlib"} {
		pkg := Package{Name: name, Version: "1.2.3"}
		first, err := HashCounter{}.CountVulnerabilities(ctx, pkg)
		require.NoError(t, err)
		second, err := HashCounter{}.CountVulnerabilities(ctx, pkg)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.GreaterOrEqual(t, first, 0)
		assert.LessOrEqual(t, first, 3)
	}
}

func TestDemoComponents(t *testing.T) {
	demo := DemoComponents()
	require.Len(t, demo.Components, 5)
	assert.Equal(t, "lodash", demo.Components[0].Name)
	assert.Equal(t, "demo-1", demo.Components[0].ID)
	assert.Equal(t, 45, demo.Components[0].RiskScore)
	assert.Equal(t, 4, demo.Vulnerabilities)

	// A fresh copy every call.
	demo.Components[0].Name = "changed"
	assert.Equal(t, "lodash", DemoComponents().Components[0].Name)
}
