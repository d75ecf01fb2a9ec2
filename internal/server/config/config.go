// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/common"
)

// Key sources.
const (
	KeySourceFile = "file"
	KeySourceS3   = "s3"
)

// SeedUser is a user created at startup when absent from the store.
// Only BCrypt hashes are accepted, never plaintext passwords.
type SeedUser struct {
	Username     string   `json:"username" yaml:"username"`
	PasswordHash string   `json:"password_hash" yaml:"password_hash"`
	Authorities  []string `json:"authorities" yaml:"authorities"`
}

// Config holds runtime settings for the jwtkeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - KeySource: where RSA key material is read from ("file" or "s3").
//   - PrivateKeyPath / PublicKeyPath: PEM file paths, or object keys when KeySource is "s3".
//   - Issuer: value of the "iss" claim; also the expected issuer on verification.
//   - VerifyIssuer: reject tokens whose issuer differs from Issuer.
//   - TokenValidityDuration: lifetime of an issued token.
//   - PublicPaths: allow-list served without authentication; a trailing "*" matches a prefix.
//   - LoginRateLimit / LoginRateBurst: per-client limit for /authenticate (0 disables).
//   - LogBackend / LogLevel: logger selection.
//   - S3*: settings for the S3-compatible key store.
//   - SeedUsers: users provisioned at startup.
type Config struct {
	EndpointAddrHTTP      string
	DatabaseDSN           string
	KeySource             string
	PrivateKeyPath        string
	PublicKeyPath         string
	Issuer                string
	VerifyIssuer          bool
	TokenValidityDuration time.Duration
	PublicPaths           []string
	LoginRateLimit        float64
	LoginRateBurst        int
	LogBackend            string
	LogLevel              string
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	SeedUsers             []SeedUser
}

// LoadDefaults populates Config with development defaults.
// NOTE: the key paths point at files that must be generated with
// `keeperctl keygen` before the server can start.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.KeySource = KeySourceFile
	c.PrivateKeyPath = "app.key"
	c.PublicKeyPath = "app.pub"
	c.Issuer = "jwtkeeper"
	c.VerifyIssuer = true
	c.TokenValidityDuration = 1 * time.Hour
	c.PublicPaths = []string{"/health", "/metrics", "/.well-known/jwks.json"}
	c.LoginRateLimit = 5
	c.LoginRateBurst = 10
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "keys"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// Validate reports settings that would make the server unusable. Errors
// wrap common.ErrConfiguration.
func (c *Config) Validate() error {
	if c.EndpointAddrHTTP == "" {
		return fmt.Errorf("%w: empty http address", common.ErrConfiguration)
	}
	if c.Issuer == "" {
		return fmt.Errorf("%w: empty issuer", common.ErrConfiguration)
	}
	if c.TokenValidityDuration <= 0 {
		return fmt.Errorf("%w: token validity must be positive, got %s", common.ErrConfiguration, c.TokenValidityDuration)
	}
	if c.KeySource != KeySourceFile && c.KeySource != KeySourceS3 {
		return fmt.Errorf("%w: unknown key source %q", common.ErrConfiguration, c.KeySource)
	}
	if c.PrivateKeyPath == "" || c.PublicKeyPath == "" {
		return fmt.Errorf("%w: key locations are required", common.ErrConfiguration)
	}
	if c.LoginRateLimit < 0 || c.LoginRateBurst < 0 {
		return fmt.Errorf("%w: negative login rate limit", common.ErrConfiguration)
	}
	for _, u := range c.SeedUsers {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("%w: seed user needs username and password_hash", common.ErrConfiguration)
		}
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON/YAML file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
