// Package server wires the jwtkeeper components together and runs the HTTP
// endpoint until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/jwtkeeper/internal/logging"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/auth"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/config"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/keys"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/rest"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *rest.HTTPServer
}

// newKeySource picks the key store named by the config.
var newKeySource = func(ctx context.Context, c *config.Config) (keys.Source, error) {
	switch c.KeySource {
	case config.KeySourceS3:
		client, err := keys.NewS3Client(ctx, keys.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 client error: %w", err)
		}
		return keys.NewS3Source(client, c.S3Bucket), nil
	default:
		return keys.FileSource{}, nil
	}
}

// NewApp builds every component from c. Any missing or invalid key material
// or configuration is reported here, before anything starts listening.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	src, err := newKeySource(ctx, c)
	if err != nil {
		return nil, err
	}
	kp, err := keys.Load(ctx, src, c.PrivateKeyPath, c.PublicKeyPath)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Signing key loaded", "source", c.KeySource, "kid", kp.KeyID())

	issuer, err := auth.NewIssuer(kp, c.Issuer, c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}
	verifier, err := auth.NewVerifier(kp, c.Issuer, c.VerifyIssuer)
	if err != nil {
		return nil, err
	}

	rm, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	us := services.NewUserService(rm)
	n, err := us.Seed(ctx, c.SeedUsers)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}
	if n > 0 {
		logger.Info(ctx, "Seed users created", "count", n)
	}

	hs, err := rest.NewHTTPServer(logger, rest.Options{
		Address:        c.EndpointAddrHTTP,
		PublicPaths:    c.PublicPaths,
		Realm:          c.Issuer,
		LoginRateLimit: c.LoginRateLimit,
		LoginRateBurst: c.LoginRateBurst,
		Authenticator:  us,
		Verifier:       verifier,
		Issuer:         issuer,
		Keys:           kp,
		Metrics:        metrics.New(nil),
	})
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, repomanager: rm, httpServer: hs}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database DSN configured, using in-memory user store")
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	rm, err := repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, err
	}
	return rm, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	err := app.httpServer.Run(ctx)

	if cerr := app.repomanager.Close(); cerr != nil {
		app.logger.Error(ctx, "error closing repository", "error", cerr.Error())
	}
	app.logger.Info(ctx, "App stopped")

	return err
}
