package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-ks", "-priv", "-pub", "-i", "-vi", "-t", "-pp", "-rl", "-rb",
	"-l", "-ll", "-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-d string    PostgreSQL DSN (empty = in-memory store)
//	-ks string   key source: file or s3
//	-priv string private key PEM path (or S3 object key)
//	-pub string  public key PEM path (or S3 object key)
//	-i string    token issuer
//	-vi bool     verify issuer on incoming tokens
//	-t value     token validity: whole minutes ("15") or a duration ("90s")
//	-pp string   comma-separated public path allow-list
//	-rl float    login requests per second per client (0 disables)
//	-rb int      login burst per client
//	-l string    log backend: slog or zap
//	-ll string   log level
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket name
//	-g string    S3 region
//	-e string    S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Only recognised flags are parsed (see flagx.FilterArgs), so the config
// file flag can live on the same command line.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.KeySource, "ks", config.KeySource, "key source (file|s3)")
	fs.StringVar(&config.PrivateKeyPath, "priv", config.PrivateKeyPath, "RSA private key location")
	fs.StringVar(&config.PublicKeyPath, "pub", config.PublicKeyPath, "RSA public key location")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")
	fs.BoolVar(&config.VerifyIssuer, "vi", config.VerifyIssuer, "verify token issuer")

	fs.Func("t", "token validity, minutes or duration", func(v string) error {
		d, err := parseValidity(v)
		if err != nil {
			return err
		}
		config.TokenValidityDuration = d
		return nil
	})
	fs.Func("pp", "public paths, comma separated", func(v string) error {
		config.PublicPaths = splitList(v)
		return nil
	})

	fs.Float64Var(&config.LoginRateLimit, "rl", config.LoginRateLimit, "login requests per second per client")
	fs.IntVar(&config.LoginRateBurst, "rb", config.LoginRateBurst, "login burst per client")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "ll", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// parseValidity reads a bare integer as minutes and anything else as a
// time.Duration string.
func parseValidity(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	return time.ParseDuration(v)
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
