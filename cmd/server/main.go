package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"storeAdminWs/internal/config"
	collectioninfra "storeAdminWs/internal/modules/collection/infrastructure"
	collectiontransport "storeAdminWs/internal/modules/collection/interface"
	dashboardusecase "storeAdminWs/internal/modules/dashboard/application/usecase"
	dashboardtransport "storeAdminWs/internal/modules/dashboard/interface"
	ordersusecase "storeAdminWs/internal/modules/orders/application/usecase"
	syncinfra "storeAdminWs/internal/modules/sync/infrastructure"
	synctransport "storeAdminWs/internal/modules/sync/interface"
	"storeAdminWs/internal/platform/broker"
	"storeAdminWs/internal/shared/auth"
	"storeAdminWs/internal/shared/httputil"
	"storeAdminWs/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("backend config resolved", slog.String("baseUrl", cfg.Backend.BaseURL), slog.Duration("timeout", cfg.Backend.Timeout))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", cfg.Kafka.Topics))

	// Collection client over the store backend, with the short-lived lookup
	// cache the order enrichment fan-out leans on.
	cache := collectioninfra.NewLookupCache(cfg.Sync.CacheSize, cfg.Sync.CacheTTL)
	client := collectioninfra.NewCollectionHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, nil, cache)

	enrichUC := ordersusecase.NewEnrichOrdersUseCase(client, ordersusecase.TotalFromProducts)
	countsUC := dashboardusecase.NewCountsUseCase(client)

	bus := syncinfra.NewMemoryBus()
	hub := syncinfra.NewHub()

	// Mutations done through this service publish with the tab's origin;
	// backend-originated changes come in through Kafka with no origin.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker.StartKafkaBridge(ctx, bus, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topics)

	validator := auth.NewJWTValidatorWithPublicKey(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(httputil.MetricsMiddleware())
	e.GET("/metrics", httputil.MetricsHandler())
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]any{"status": "ok", "clients": hub.ClientCount()})
	})

	adminHandler := collectiontransport.NewAdminHandler(client, enrichUC, bus)
	adminGroup := e.Group("/api/v1/admin")
	adminHandler.Register(adminGroup)
	dashboardtransport.NewCountsHandler(countsUC).Register(adminGroup)

	wsHandler := synctransport.NewWebsocketHandler(synctransport.SessionDeps{
		Hub:        hub,
		Bus:        bus,
		Client:     client,
		Orders:     enrichUC,
		Validator:  validator,
		SendBuffer: cfg.Sync.SendBuffer,
	})
	e.GET("/ws/admin/:entity/:token", wsHandler)
	e.GET("/ws/admin/:entity", wsHandler)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	cancel()
	hub.Shutdown()
	e.Close()
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
