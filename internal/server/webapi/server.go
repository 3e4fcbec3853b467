// Package webapi is the HTTP ingress of the launch server: a health probe and
// the crash-report endpoint used by clients that pick the file name
// themselves.
package webapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/crashreports"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
)

// TokenVerifier resolves a bearer token to a session.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*models.UserSession, error)
}

type CrashIngestor interface {
	Ingest(ctx context.Context, r *crashreports.Report) (*crashreports.Result, error)
}

type Server struct {
	address  string
	router   *chi.Mux
	tokens   TokenVerifier
	reports  CrashIngestor
	maxBody  int64
	logger   logging.Logger
	shutdown time.Duration
}

// New builds the router. maxBody bounds the request body; it should leave
// room for the JSON envelope around the largest accepted report.
func New(address string, l logging.Logger, tokens TokenVerifier, reports CrashIngestor, maxBody int64) *Server {
	s := &Server{
		address:  address,
		tokens:   tokens,
		reports:  reports,
		maxBody:  maxBody,
		logger:   l.With("module", "webapi"),
		shutdown: 10 * time.Second,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	r.Route("/webapi", func(r chi.Router) {
		r.Get("/health", s.Health)
		r.With(s.optionalAuth).Post("/crashreport", s.CrashReport)
	})
	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
