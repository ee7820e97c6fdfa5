package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comm-hub/chat-service/config"
	"github.com/comm-hub/chat-service/internal/postgres"
	"github.com/comm-hub/chat-service/internal/service"
	"github.com/comm-hub/chat-service/internal/storage"
	grpcx "github.com/comm-hub/chat-service/internal/transport/grpc"
	httpx "github.com/comm-hub/chat-service/internal/transport/http"
	"github.com/comm-hub/chat-service/internal/transport/ws"
	"github.com/comm-hub/chat-service/pkg/logger"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	roomRepo := postgres.NewRoomRepository(db.Pool)
	userRepo := postgres.NewUserRepository(db.Pool)
	msgRepo := postgres.NewMessageRepository(db.Pool)

	// --- services ---
	convSvc := service.NewConversationService(roomRepo, userRepo)
	chatSvc := service.NewChatService(roomRepo, userRepo, msgRepo)
	chatSvc.SetMaxTextLen(cfg.Chat.MaxTextLen)

	// --- attachments ---
	attachments, err := storage.NewAttachmentStore(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		log.Fatalf("media dir: %v", err)
	}

	// --- WS Hub & Server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, chatSvc)
	wsServer.SetPingInterval(cfg.PingInterval())

	// --- HTTP ---
	handler := httpx.NewHandler(convSvc, chatSvc, attachments)
	router := httpx.NewRouter(handler, wsServer, cfg.Media.Dir)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- gRPC (health для проб платформы) ---
	grpcServer, healthSrv := grpcx.NewServer()

	// --- run both servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			errCh <- err
			return
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
