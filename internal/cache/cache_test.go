// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "pkg:npm/lodash@4.17.20"

func TestCache_IsFresh_NoMetadata(t *testing.T) {
	c := New(t.TempDir(), 0)
	assert.False(t, c.IsFresh(testKey), "IsFresh() = true, want false when no metadata file exists")
}

func TestCache_IsFresh_Stale(t *testing.T) {
	c := New(t.TempDir(), time.Hour)
	require.NoError(t, c.Store(testKey, []byte("{}")))

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.False(t, c.IsFresh(testKey), "IsFresh() = true, want false when entry is older than ttl")
	assert.True(t, c.Exists(testKey), "stale entries stay loadable")
}

func TestCache_IsFresh_Fresh(t *testing.T) {
	c := New(t.TempDir(), 0)
	require.NoError(t, c.Store(testKey, []byte("{}")))

	c.now = func() time.Time { return time.Now().Add(23 * time.Hour) }
	assert.True(t, c.IsFresh(testKey), "IsFresh() = false, want true within the default 24h ttl")
}

func TestCache_IsFresh_CorruptMetadata(t *testing.T) {
	c := New(t.TempDir(), 0)
	require.NoError(t, c.Store(testKey, []byte("{}")))
	require.NoError(t, os.WriteFile(c.metaPath(testKey), []byte("not json"), 0o644))
	assert.False(t, c.IsFresh(testKey))
}

func TestCache_StoreAndLoad(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 0)

	data := []byte(`{"vulns":["GHSA-1"]}`)
	require.NoError(t, c.Store(testKey, data), "Store() error")

	got, err := c.Load(testKey)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	metaBytes, err := os.ReadFile(c.metaPath(testKey))
	require.NoError(t, err, "failed to read metadata file")
	var meta Metadata
	require.NoError(t, json.Unmarshal(metaBytes, &meta))
	assert.Equal(t, testKey, meta.Key)

	storedAt, err := time.Parse(time.RFC3339, meta.StoredAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), storedAt, time.Minute)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	c := New(t.TempDir(), 0)
	require.NoError(t, c.Store("a", []byte("1")))

	assert.True(t, c.Exists("a"))
	assert.False(t, c.Exists("b"))
	assert.False(t, c.IsFresh("b"))
}

func TestCache_EntryNameIsFileSafe(t *testing.T) {
	name := entryName("pkg:maven/org.apache/commons@1.0?type=jar#sub/path")
	assert.Len(t, name, 32)
	assert.False(t, strings.ContainsAny(name, "/:?#@"))
}

func TestCache_LoadMissing(t *testing.T) {
	c := New(t.TempDir(), 0)
	_, err := c.Load("missing")
	assert.Error(t, err)
}
