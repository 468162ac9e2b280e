// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.RateLimit.ContactLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.ContactWindow)
	assert.Equal(t, 3, cfg.Client.MaxRetries)
	assert.False(t, cfg.OSV.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "vendor-risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  read_timeout: 5s
database:
  driver: postgres
  dsn: postgres://localhost/vr
log:
  level: debug
osv:
  enabled: true
`), 0o644))

	t.Setenv("VENDOR_RISK_LOG_LEVEL", "warn")
	t.Setenv("VENDOR_RISK_AUTH_JWT_SECRET", "from-env-secret-value")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":7000"}))

	cfg, err := Load(Options{
		File:     path,
		Flags:    flags,
		FlagKeys: map[string]string{"server.addr": "addr"},
	})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr, "flag beats file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/vr", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Log.Level, "env beats file")
	assert.Equal(t, "from-env-secret-value", cfg.Auth.JWTSecret)
	assert.True(t, cfg.OSV.Enabled)
}

func TestLoad_UnsetFlagKeepsDefault(t *testing.T) {
	isolate(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":1234", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(Options{Flags: flags, FlagKeys: map[string]string{"server.addr": "addr"}})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr, "unchanged flags do not override")
}

func TestLoad_UnknownFlag(t *testing.T) {
	isolate(t)
	_, err := Load(Options{Flags: pflag.NewFlagSet("x", pflag.ContinueOnError), FlagKeys: map[string]string{"server.addr": "nope"}})
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	t.Setenv("VENDOR_RISK_DATABASE_DRIVER", "oracle")
	t.Setenv("VENDOR_RISK_LOG_FORMAT", "xml")

	_, err := Load(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "log.format")
}

func TestCacheDir(t *testing.T) {
	cfg := &Config{OSV: OSVConfig{CacheDir: "/tmp/osv"}}
	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/osv", dir)

	cfg.OSV.CacheDir = ""
	dir, err = cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "vendor-risk", filepath.Base(dir))
}
