package grpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/terrariumai/brains/pkg/protocol/grpc/middleware"
)

// RunServer listens on port and serves the health service until ctx is done
func RunServer(ctx context.Context, hs *health.Server, port string, logger *zap.Logger) error {
	listen, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	return Serve(ctx, listen, hs, logger)
}

// Serve serves the health service on listen until ctx is done
func Serve(ctx context.Context, listen net.Listener, hs *health.Server, logger *zap.Logger) error {
	// gRPC server statup options
	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(
			keepalive.ServerParameters{
				Time:    (time.Duration(2) * time.Second),
				Timeout: (time.Duration(2) * time.Second),
			},
		),
		grpc.KeepaliveEnforcementPolicy(
			keepalive.EnforcementPolicy{
				MinTime:             (time.Duration(2) * time.Second),
				PermitWithoutStream: false,
			},
		),
	}

	// add middleware
	opts = middleware.AddLogging(logger, opts)

	// register service
	server := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(server, hs)

	// shutdown with the arena
	go func() {
		<-ctx.Done()
		logger.Warn("shutting down gRPC server...")
		hs.Shutdown()
		// Not graceful stop because Watch streams never complete
		server.Stop()
		logger.Warn("grpc server shut down!")
	}()

	// start gRPC server
	logger.Info("starting gRPC server...", zap.String("addr", listen.Addr().String()))
	err := server.Serve(listen)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
