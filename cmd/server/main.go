package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	httpapi "rental-desk-backend/internal/api/http"
	"rental-desk-backend/internal/bootstrap"
	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/security"
	"rental-desk-backend/internal/service"
	"rental-desk-backend/internal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	hashPasscode := flag.String("hash-passcode", "", "Print the bcrypt hash of a desk passcode and exit")
	migrate := flag.Bool("migrate", true, "Create the database schema if missing")
	flag.Parse()

	if *hashPasscode != "" {
		hash, err := security.HashPasscode(*hashPasscode)
		if err != nil {
			log.Fatalf("Failed to hash passcode: %v", err)
		}
		fmt.Println(hash)
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Desk Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress(), "timezone", cfg.Business.Timezone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	store, err := bootstrap.OpenSessionStore(ctx, cfg, *migrate)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close(context.Background())
	logger.Info("Database connection established", "driver", cfg.Database.Driver)

	// Initialize Storage Service
	photoStore, err := storage.New(ctx, bootstrap.StorageConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Photo storage ready", "type", cfg.Storage.Type)

	// Initialize Services
	tokenManager := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.DeviceTokenTTL())
	notifier := bootstrap.NewNotifier(cfg)
	maxBytes := cfg.Storage.MaxFileSize << 20

	authSvc := service.NewAuthService(tokenManager, cfg.Auth.DeskPasscodeHash)
	sessionSvc := service.NewSessionService(store, notifier, cfg.Location())
	photoSvc := service.NewPhotoService(
		store,
		photoStore,
		cfg.Storage.AllowedTypes,
		maxBytes,
		cfg.Storage.ThumbnailMaxDimension,
		cfg.URLExpiry(),
	)

	// Initialize HTTP handlers
	routerCfg := httpapi.RouterConfig{
		Auth:        httpapi.NewAuthHandler(authSvc),
		Sessions:    httpapi.NewSessionHandler(sessionSvc, photoSvc, cfg.Location()),
		MaxFileSize: maxBytes,
		Health:      httpapi.HealthCheck(store.Ping),
		Middleware:  httpapi.NewAuthMiddleware(tokenManager),
	}
	if mock, ok := photoStore.(*storage.MockStorageService); ok {
		logger.Info("Serving mock storage over HTTP", "upload_dir", cfg.Storage.UploadDir)
		routerCfg.Files = mock
	}

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Set up gRPC health server
	var grpcServer *grpc.Server
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}

		grpcServer = grpc.NewServer()
		healthServer := health.NewServer()
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthServer)

		// Register reflection service for grpcurl
		reflection.Register(grpcServer)

		go func() {
			logger.Info("gRPC server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("Server stopped. Goodbye!")
}
