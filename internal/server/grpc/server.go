// Package grpc serves LaunchService: authorization, token verification and
// refresh, hardware reports and crash-report uploads.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/launchserver/internal/api"
	"github.com/dmitrijs2005/launchserver/internal/logging"
	"github.com/dmitrijs2005/launchserver/internal/server/crashreports"
	"github.com/dmitrijs2005/launchserver/internal/server/providers"
)

// CrashIngestor accepts crash reports.
type CrashIngestor interface {
	Ingest(ctx context.Context, r *crashreports.Report) (*crashreports.Result, error)
}

type GRPCServer struct {
	api.UnimplementedLaunchServiceServer
	address  string
	provider providers.Provider
	reports  CrashIngestor
	logger   logging.Logger
	maxRecv  int
	now      func() time.Time
}

type Option func(*GRPCServer)

// WithMaxRecvSize raises the inbound message limit. Single-part crash
// reports need it when the size ceiling is above the gRPC default.
func WithMaxRecvSize(n int) Option {
	return func(s *GRPCServer) { s.maxRecv = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *GRPCServer) { s.now = now }
}

func NewGRPCServer(address string, l logging.Logger, p providers.Provider, reports CrashIngestor, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		provider: p,
		reports:  reports,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *GRPCServer) newServer() *grpc.Server {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(s.accessTokenInterceptor)}
	if s.maxRecv > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(s.maxRecv))
	}
	srv := grpc.NewServer(opts...)
	api.RegisterLaunchServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
