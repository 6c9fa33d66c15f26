package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elskow/moldavite/internal/config"
	"github.com/elskow/moldavite/internal/version"
)

type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	httpServer *http.Server
}

type Params struct {
	fx.In

	Config  *config.AppConfig
	Logger  *zap.Logger
	Handler http.Handler
}

func NewServer(p Params) *Server {
	addr := net.JoinHostPort(p.Config.Server.Host, p.Config.Server.Port)

	return &Server{
		config: p.Config,
		log:    p.Logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           p.Handler,
			ReadHeaderTimeout: time.Duration(p.Config.Server.ReadHeaderTimeout) * time.Second,
			ErrorLog:          zap.NewStdLog(p.Logger.Named("http")),
		},
	}
}

// Start blocks until the server is stopped. A stopped server returns nil.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info("Starting HTTP server",
		zap.String("address", lis.Addr().String()),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddString("version", version.Version)
		enc.AddString("service_version", config.Server.ServiceVersion)
		enc.AddBool("auth_enabled", config.Auth.Enabled)
		enc.AddString("build_namespace", config.Build.BuildNamespace)
		enc.AddString("infra_namespace", config.Build.InfraNamespace)
		enc.AddInt64("max_ttl", config.Build.MaxTTL)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
