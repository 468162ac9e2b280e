// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package cache stores downloaded data on disk with a freshness timestamp
// per entry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Metadata is written next to every entry.
type Metadata struct {
	Key      string `json:"key"`
	StoredAt string `json:"stored_at"`
}

type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates a cache under dir. A non-positive ttl means DefaultTTL.
func New(dir string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}
}

// IsFresh reports whether key was stored less than ttl ago.
func (c *Cache) IsFresh(key string) bool {
	meta, err := c.loadMetadata(key)
	if err != nil {
		return false
	}
	storedAt, err := time.Parse(time.RFC3339, meta.StoredAt)
	if err != nil {
		return false
	}
	return c.now().Sub(storedAt) < c.ttl
}

func (c *Cache) Store(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(c.dataPath(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache data: %w", err)
	}
	meta := Metadata{Key: key, StoredAt: c.now().UTC().Format(time.RFC3339)}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(c.metaPath(key), metaBytes, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Load returns the stored bytes regardless of freshness.
func (c *Cache) Load(key string) ([]byte, error) {
	return os.ReadFile(c.dataPath(key))
}

func (c *Cache) Exists(key string) bool {
	_, err := os.Stat(c.dataPath(key))
	return err == nil
}

// entryName maps arbitrary keys such as purls to safe file names.
func entryName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

func (c *Cache) dataPath(key string) string {
	return filepath.Join(c.dir, entryName(key)+".json")
}

func (c *Cache) metaPath(key string) string {
	return filepath.Join(c.dir, entryName(key)+".meta.json")
}

func (c *Cache) loadMetadata(key string) (*Metadata, error) {
	data, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
