// Package grpc exposes the auth services over gRPC with a JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/medmind-auth/internal/authrpc"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	authrpc.UnimplementedAuthServiceServer
	address  string
	auth     *services.AuthService
	accounts *services.AccountService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as *services.AuthService, acs *services.AccountService) (*GRPCServer, error) {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		auth:     as,
		accounts: acs,
	}, nil
}

// newServer builds the gRPC server with the auth service and health checks
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	authrpc.RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(authrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
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

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
