package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"cmd"}, args...)
}

func TestParseFile_JSON(t *testing.T) {
	path := writeConfigFile(t, "conf.json", `{
		"endpoint_addr_http": ":9999",
		"issuer": "acme",
		"verify_issuer": false,
		"token_validity_duration": "30m",
		"login_rate_limit": 0,
		"seed_users": [{"username": "alice", "password_hash": "$2a$10$x", "authorities": ["user"]}]
	}`)
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseFile(&c)

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, "acme", c.Issuer)
	assert.False(t, c.VerifyIssuer)
	assert.Equal(t, 30*time.Minute, c.TokenValidityDuration)
	assert.Equal(t, float64(0), c.LoginRateLimit)
	require.Len(t, c.SeedUsers, 1)
	assert.Equal(t, "alice", c.SeedUsers[0].Username)
	assert.Equal(t, []string{"user"}, c.SeedUsers[0].Authorities)

	// untouched keys keep their defaults
	assert.Equal(t, "app.key", c.PrivateKeyPath)
	assert.Equal(t, 10, c.LoginRateBurst)
}

func TestParseFile_YAML(t *testing.T) {
	path := writeConfigFile(t, "conf.yaml", `
key_source: s3
private_key_path: prod/app.key
public_key_path: prod/app.pub
token_validity_duration: 2h
public_paths:
  - /health
log_backend: zap
`)
	withArgs(t, "--config="+path)

	var c Config
	c.LoadDefaults()
	parseFile(&c)

	assert.Equal(t, KeySourceS3, c.KeySource)
	assert.Equal(t, "prod/app.key", c.PrivateKeyPath)
	assert.Equal(t, "prod/app.pub", c.PublicKeyPath)
	assert.Equal(t, 2*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, []string{"/health"}, c.PublicPaths)
	assert.Equal(t, "zap", c.LogBackend)
	assert.True(t, c.VerifyIssuer)
}

func TestParseFile_NoFlag(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	parseFile(&c)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, c)
}

func TestParseFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		withArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))
		var c Config
		assert.Panics(t, func() { parseFile(&c) })
	})

	t.Run("broken json", func(t *testing.T) {
		withArgs(t, "-c", writeConfigFile(t, "bad.json", `{"issuer":`))
		var c Config
		assert.Panics(t, func() { parseFile(&c) })
	})
}

func TestParseFileThenFlags_SubMinuteValidity(t *testing.T) {
	for _, v := range []string{"90s", "30s"} {
		t.Run(v, func(t *testing.T) {
			path := writeConfigFile(t, "conf.json", `{"token_validity_duration": "`+v+`"}`)
			withArgs(t, "-c", path)

			want, err := time.ParseDuration(v)
			require.NoError(t, err)

			var c Config
			c.LoadDefaults()
			parseFile(&c)
			parseFlags(&c)

			assert.Equal(t, want, c.TokenValidityDuration)
			assert.NoError(t, c.Validate())
		})
	}
}
