// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringMap is a map[string]string stored as a JSON text column.
type StringMap map[string]string

// Scan implements the sql.Scanner interface for StringMap.
func (m *StringMap) Scan(value any) error {
	return scanJSON(value, m)
}

// Value implements the driver.Valuer interface for StringMap.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return valueJSON(m)
}

// ScoreMap is a map[string]int stored as a JSON text column.
type ScoreMap map[string]int

// Scan implements the sql.Scanner interface for ScoreMap.
func (m *ScoreMap) Scan(value any) error {
	return scanJSON(value, m)
}

// Value implements the driver.Valuer interface for ScoreMap.
func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return valueJSON(m)
}

// Scan implements the sql.Scanner interface for AnalysisData.
func (d *AnalysisData) Scan(value any) error {
	return scanJSON(value, d)
}

// Value implements the driver.Valuer interface for AnalysisData.
func (d AnalysisData) Value() (driver.Value, error) {
	return valueJSON(d)
}

func scanJSON(value any, dst any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type for JSON column: %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func valueJSON(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
