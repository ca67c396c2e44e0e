package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server は HTTP API と gRPC ヘルスチェックのライフサイクルを管理します。
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// New は HTTP ハンドラーと、grpc_listen_addr が設定されていれば gRPC ヘルスサービスを構築します。
func New(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}

	if cfg.GRPCListenAddr != "" {
		s.grpcServer = grpc.NewServer(opts...)
		s.health = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}

	return s
}

// Run は各リスナーを開き、コンテキストがキャンセルされるまでサーバーを起動します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}

	var grpcLis net.Listener
	if s.grpcServer != nil {
		grpcLis, err = net.Listen("tcp", s.cfg.GRPCListenAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.GRPCListenAddr, err)
		}
	}

	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve は与えられたリスナーで待ち受けます。grpcLis は gRPC が無効な場合 nil で構いません。
// コンテキストがキャンセルされると ShutdownTimeout 以内に停止します。
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		s.logger.Info("http server listening", slog.String("addr", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP: %w", err)
		}
	}()

	if s.grpcServer != nil && grpcLis != nil {
		go func() {
			s.logger.Info("grpc health server listening", slog.String("addr", grpcLis.Addr().String()))
			if err := s.grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("serve gRPC: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownErr := s.shutdown()
	return errors.Join(serveErr, shutdownErr)
}

func (s *Server) shutdown() error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down servers", slog.Duration("timeout", timeout))

	if s.health != nil {
		s.health.Shutdown()
	}

	var err error
	if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
		err = fmt.Errorf("shutdown HTTP: %w", shutdownErr)
	}

	if s.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpcServer.Stop()
		}
	}

	return err
}
