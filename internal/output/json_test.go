// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/vendor-risk/internal/sbom"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

func TestWriteJSON_Analysis(t *testing.T) {
	res := sbom.DemoComponents()
	summary := res.Summary()
	analysis := types.SBOMAnalysis{
		ID:                   "a1",
		Filename:             "demo.json",
		FileType:             res.Format.String(),
		TotalComponents:      summary.TotalComponents,
		TotalVulnerabilities: summary.TotalVulnerabilities,
		RiskScore:            summary.RiskScore,
		AnalysisData:         res.AnalysisData(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, analysis))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "CycloneDX", decoded["file_type"])
	assert.EqualValues(t, 5, decoded["total_components"])
	assert.EqualValues(t, 4, decoded["total_vulnerabilities"])

	data := decoded["analysis_data"].(map[string]any)
	components := data["components"].([]any)
	require.Len(t, components, 5)
	first := components[0].(map[string]any)
	assert.Equal(t, "lodash", first["name"])
	assert.EqualValues(t, 2, first["vulnerabilityCount"])
	assert.EqualValues(t, 45, first["riskScore"])
}

func TestWriteJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]string{"k": "v"}))
	assert.Equal(t, "{\n  \"k\": \"v\"\n}\n", buf.String())
}

func TestWriteJSON_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, types.Vendor{Name: "Smith & Sons <Ltd>"}))
	assert.Contains(t, buf.String(), "Smith & Sons <Ltd>")
}

func TestWriteJSON_Error(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("table")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("sarif")
	assert.Error(t, err)
}
