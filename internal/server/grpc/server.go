// Package grpc is the boundary layer: it exposes the identity core and the
// song library over gRPC, authenticates protected calls with a session token
// and translates failure kinds into gRPC status codes.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/tunekeeper/internal/logging"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
	"github.com/dmitrijs2005/tunekeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authenticator is the gateway the handlers call into.
type Authenticator interface {
	Register(ctx context.Context, email, username, password string) (*models.Account, models.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.Account, models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Resolver maps a session token to a live account.
type Resolver interface {
	Resolve(ctx context.Context, sessionToken string) (*models.Account, error)
}

// Library is the per-owner song catalogue behind the library service.
type Library interface {
	AddSong(ctx context.Context, ownerID string, in models.SongInput) (*models.Song, error)
	GetSong(ctx context.Context, ownerID, id string) (*models.Song, error)
	ListSongs(ctx context.Context, ownerID string, q models.SongQuery) (models.SongPage, error)
	UpdateSong(ctx context.Context, ownerID, id string, patch models.SongPatch) (*models.Song, error)
	DeleteSong(ctx context.Context, ownerID, id string) (*models.Song, error)
	PlaySong(ctx context.Context, ownerID, id string) (*models.Song, error)
}

type GRPCServer struct {
	address  string
	auth     Authenticator
	resolver Resolver
	library  Library
	logger   logging.Logger
	health   *health.Server
}

func NewGRPCServer(address string, l logging.Logger, a Authenticator, r Resolver, lib Library) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		auth:     a,
		resolver: r,
		library:  lib,
		health:   health.NewServer(),
	}
}

// newServer builds the grpc.Server with interceptors, the auth and library
// services and the standard health service.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.sessionTokenInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	pb.RegisterLibraryServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(pb.LibraryServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
