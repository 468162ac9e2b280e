// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package sbom

import (
	"fmt"

	"github.com/bonial-oss/vendor-risk/internal/risk"
	"github.com/bonial-oss/vendor-risk/internal/types"
)

var demoPackages = []struct {
	name, version, license string
	vulns                  int
}{
	{"lodash", "4.17.20", "MIT", 2},
	{"express", "4.17.1", "MIT", 1},
	{"react", "17.0.2", "MIT", 0},
	{"axios", "0.21.1", "MIT", 1},
	{"moment", "2.29.1", "MIT", 0},
}

// DemoComponents returns a fixed sample dataset for demonstrations.
func DemoComponents() *Result {
	res := &Result{
		Format:      FormatCycloneDX,
		Encoding:    EncodingJSON,
		SpecVersion: "1.5",
		Components:  make([]types.Component, 0, len(demoPackages)),
	}
	for i, p := range demoPackages {
		res.Components = append(res.Components, types.Component{
			ID:                 fmt.Sprintf("demo-%d", i+1),
			Name:               p.name,
			Version:            p.version,
			License:            p.license,
			VulnerabilityCount: p.vulns,
			RiskScore:          risk.ComponentScore(p.vulns, p.version),
			Purl:               "pkg:npm/" + p.name + "@" + p.version,
		})
		res.Vulnerabilities += p.vulns
	}
	return res
}
