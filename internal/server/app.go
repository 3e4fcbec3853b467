// Package server wires the launch server together: identity store, auth
// strategy, crash report ingestion, the gRPC and HTTP endpoints and the
// background janitors, all stopped together on SIGINT/SIGTERM.
package server

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/auth"
	"github.com/dmitrijs2005/launchserver/internal/server/bridge"
	"github.com/dmitrijs2005/launchserver/internal/server/config"
	"github.com/dmitrijs2005/launchserver/internal/server/crashreports"
	"github.com/dmitrijs2005/launchserver/internal/server/hwid"
	"github.com/dmitrijs2005/launchserver/internal/server/providers"
	"github.com/dmitrijs2005/launchserver/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/launchserver/internal/server/store"
	"github.com/dmitrijs2005/launchserver/internal/server/webapi"

	gs "github.com/dmitrijs2005/launchserver/internal/server/grpc"
)

const janitorInterval = time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	closeDB  func() error
	provider providers.Provider
	ingestor *crashreports.Ingestor
	sweeper  *crashreports.Sweeper
	grpc     *gs.GRPCServer
	http     *webapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	key, err := signingKey(ctx, c, logger)
	if err != nil {
		return nil, err
	}
	sessions, err := auth.NewSessionManager(key, c.SessionTTL, c.LegacySalt)
	if err != nil {
		return nil, err
	}

	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, identities are kept in memory")
	}
	st, closeDB, err := store.Open(ctx, c.DatabaseDSN, c.StoreTimeout, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, closeDB: closeDB}
	if err := app.buildProvider(st, sessions); err != nil {
		_ = closeDB()
		return nil, err
	}
	if err := app.buildCrashReports(ctx); err != nil {
		_ = closeDB()
		return nil, err
	}

	// base64 in the JSON codec grows content by a third
	maxRecv := int(c.CrashMaxFileSize/3*4) + 1<<20
	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, app.provider, app.ingestor, gs.WithMaxRecvSize(maxRecv))
	app.http = webapi.New(c.EndpointAddrHTTP, logger, app.provider, app.ingestor, 2*c.CrashMaxFileSize+64<<10)
	return app, nil
}

func signingKey(ctx context.Context, c *config.Config, logger logging.Logger) (*ecdsa.PrivateKey, error) {
	if c.SigningKeyFile != "" {
		return auth.LoadSigningKey(c.SigningKeyFile)
	}
	logger.Warn(ctx, "no signing key file configured, sessions will not survive a restart")
	return auth.GenerateSigningKey()
}

func (app *App) buildProvider(st store.Store, sessions *auth.SessionManager) error {
	c := app.config
	mode, err := providers.ParseMode(c.AuthMode)
	if err != nil {
		return err
	}

	deps := providers.Deps{
		Store:    st,
		Sessions: sessions,
		Guard:    hwid.NewGuard(st, c.HardwareEnforcement, app.logger.With("module", "hwid")),
		Logger:   app.logger.With("module", "auth"),
	}
	if mode == providers.ModeBridged {
		client, err := bridge.NewClient(c.BridgeBaseURL,
			bridge.WithTimeout(c.BridgeTimeout),
			bridge.WithMaxConcurrent(c.BridgeMaxConcurrent),
			bridge.WithLogger(app.logger.With("module", "bridge")),
		)
		if err != nil {
			return err
		}
		deps.Bridge = client
	}

	app.provider, err = providers.New(mode, c.BridgeDualMode, deps)
	return err
}

func (app *App) buildCrashReports(ctx context.Context) error {
	c := app.config

	var storage crashreports.Storage
	switch c.CrashStorageBackend {
	case config.BackendS3:
		s, err := crashreports.NewS3Storage(ctx, crashreports.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return err
		}
		storage = s
	default:
		s, err := crashreports.NewFSStorage(c.CrashStoragePath)
		if err != nil {
			return err
		}
		storage = s
	}

	logger := app.logger.With("module", "crashreports")
	app.ingestor = crashreports.NewIngestor(crashreports.Config{
		Enabled:           c.CrashEnabled,
		RequireAuth:       c.CrashRequireAuth,
		RateLimitPerHour:  c.CrashRateLimitPerHour,
		MaxFileSize:       c.CrashMaxFileSize,
		MaxReportsPerUser: c.CrashMaxReportsPerUser,
		ChunkIdleTimeout:  c.CrashChunkIdleTimeout,
		Enrich:            c.CrashEnrichReports,
		ProjectName:       c.ProjectName,
	}, storage, logger)

	if c.CrashCleanupOldReports {
		app.sweeper = crashreports.NewSweeper(storage, c.MaxReportAge(), c.CrashSweepInterval, logger, time.Now)
	}
	return nil
}

// Run blocks until a signal arrives, ctx is done or one of the servers
// fails, then stops everything.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "auth_mode", app.config.AuthMode, "storage", app.config.CrashStorageBackend)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.http.Run(ctx) })
	g.Go(func() error { return app.ingestor.RunJanitor(ctx, janitorInterval) })
	if app.sweeper != nil {
		g.Go(func() error { return app.sweeper.Run(ctx) })
	}

	err := g.Wait()

	app.ingestor.Close()
	if cerr := app.closeDB(); cerr != nil {
		app.logger.Error(context.Background(), "db close error", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
