package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/eslsoft/neurostudy/internal/adapter/httpapi"
	"github.com/eslsoft/neurostudy/internal/infrastructure/config"
)

// Server represents the application server
type Server struct {
	config     *config.Config
	grpcServer *grpc.Server
	health     *health.Server
	healthConn *grpc.ClientConn
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logrus.Logger, api *httpapi.Handler) (*Server, error) {
	interceptorLogger := InterceptorLogger(logger.WithField("component", "grpc"))
	logOpts := []logging.Option{logging.WithLogOnEvents(logging.StartCall, logging.FinishCall)}
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor(interceptorLogger, logOpts...)),
		grpc.ChainStreamInterceptor(logging.StreamServerInterceptor(interceptorLogger, logOpts...)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	// /healthz on the gateway asks the gRPC health service over loopback.
	endpoint := fmt.Sprintf("localhost:%d", cfg.Server.GRPCPort)
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial grpc health endpoint: %w", err)
	}

	mux := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))
	if err := api.Register(mux); err != nil {
		_ = conn.Close()
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:           NewHTTPHandler(cfg, logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		config:     cfg,
		grpcServer: grpcServer,
		health:     healthServer,
		healthConn: conn,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// NewHTTPHandler wraps mux with access logging, CORS and cleartext HTTP/2.
func NewHTTPHandler(cfg *config.Config, logger logrus.FieldLogger, mux http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return h2c.NewHandler(c.Handler(AccessLog(logger.WithField("component", "http"), mux)), &http2.Server{})
}

// StartGRPC starts the gRPC server
func (s *Server) StartGRPC() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.logger.Infof("gRPC server starting on %s", addr)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}

	return nil
}

// StartHTTP starts the HTTP gateway server
func (s *Server) StartHTTP() error {
	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	s.health.Shutdown()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Failed to shutdown HTTP server: %v", err)
	}
	if err := s.healthConn.Close(); err != nil {
		s.logger.Warnf("Failed to close health client: %v", err)
	}

	s.grpcServer.GracefulStop()

	s.logger.Info("Server shutdown complete")
	return nil
}
