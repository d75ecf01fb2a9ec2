package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/jwtkeeper/internal/flagx"
	"github.com/dmitrijs2005/jwtkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk representation of Config, used only for
// decoding. Pointer and slice fields distinguish "absent" from "zero", so
// only keys present in the file override earlier values.
type FileConfig struct {
	EndpointAddrHTTP      string          `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN           string          `json:"database_dsn" yaml:"database_dsn"`
	KeySource             string          `json:"key_source" yaml:"key_source"`
	PrivateKeyPath        string          `json:"private_key_path" yaml:"private_key_path"`
	PublicKeyPath         string          `json:"public_key_path" yaml:"public_key_path"`
	Issuer                string          `json:"issuer" yaml:"issuer"`
	VerifyIssuer          *bool           `json:"verify_issuer" yaml:"verify_issuer"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	PublicPaths           []string        `json:"public_paths" yaml:"public_paths"`
	LoginRateLimit        *float64        `json:"login_rate_limit" yaml:"login_rate_limit"`
	LoginRateBurst        *int            `json:"login_rate_burst" yaml:"login_rate_burst"`
	LogBackend            string          `json:"log_backend" yaml:"log_backend"`
	LogLevel              string          `json:"log_level" yaml:"log_level"`
	S3RootUser            string          `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword        string          `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket              string          `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              string          `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        string          `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	SeedUsers             []SeedUser      `json:"seed_users" yaml:"seed_users"`
}

// parseFile loads configuration values from the file named by the -c or
// -config flag into config. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON. Without the flag nothing is loaded. An
// unreadable or undecodable file panics, as a broken config must stop the
// process before it serves anything.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.KeySource, fc.KeySource)
	setString(&config.PrivateKeyPath, fc.PrivateKeyPath)
	setString(&config.PublicKeyPath, fc.PublicKeyPath)
	setString(&config.Issuer, fc.Issuer)
	setString(&config.LogBackend, fc.LogBackend)
	setString(&config.LogLevel, fc.LogLevel)
	setString(&config.S3RootUser, fc.S3RootUser)
	setString(&config.S3RootPassword, fc.S3RootPassword)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)

	if fc.VerifyIssuer != nil {
		config.VerifyIssuer = *fc.VerifyIssuer
	}
	if fc.TokenValidityDuration != nil {
		config.TokenValidityDuration = fc.TokenValidityDuration.Duration
	}
	if fc.PublicPaths != nil {
		config.PublicPaths = fc.PublicPaths
	}
	if fc.LoginRateLimit != nil {
		config.LoginRateLimit = *fc.LoginRateLimit
	}
	if fc.LoginRateBurst != nil {
		config.LoginRateBurst = *fc.LoginRateBurst
	}
	if fc.SeedUsers != nil {
		config.SeedUsers = fc.SeedUsers
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
