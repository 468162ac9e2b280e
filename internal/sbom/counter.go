// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package sbom

import (
	"context"
	"hash/fnv"
)

// Package identifies an SBOM package for vulnerability lookups.
type Package struct {
	Name    string
	Version string
	Purl    string
}

// VulnerabilityCounter reports how many known vulnerabilities affect a package.
type VulnerabilityCounter interface {
	CountVulnerabilities(ctx context.Context, pkg Package) (int, error)
}

// HashCounter derives a stable count in [0,3] from name@version. It is used
// when no real vulnerability source is configured, so repeated uploads of
// the same document always score the same.
type HashCounter struct{}

func (HashCounter) CountVulnerabilities(_ context.Context, pkg Package) (int, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pkg.Name + "@" + pkg.Version))
	return int(h.Sum32() % 4), nil
}
