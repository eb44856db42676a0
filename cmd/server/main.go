// Package main initializes and starts the portfolio server, setting up
// configuration, logging, database connections, repositories, services,
// handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/SRAS2024/About-Me/internal/config"
	"github.com/SRAS2024/About-Me/internal/db"
	"github.com/SRAS2024/About-Me/internal/imaging"
	"github.com/SRAS2024/About-Me/internal/locale"
	"github.com/SRAS2024/About-Me/internal/logger"
	"github.com/SRAS2024/About-Me/internal/middleware"
	"github.com/SRAS2024/About-Me/internal/repository"
	"github.com/SRAS2024/About-Me/internal/server/handler/http"
	"github.com/SRAS2024/About-Me/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	shutdownTimeout     = 10 * time.Second
	schemaRetryInterval = 5 * time.Second
)

func main() {
	// Parse command-line, .env, config file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log
	for _, w := range options.Warnings {
		zapLogger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL. An unreachable database is reported by /health
	// and the admin API answers 503 until it comes back.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if postgresDB == nil {
		zapLogger.Fatal("cannot open database", zap.Error(err))
	}
	defer postgresDB.Close()
	if err != nil {
		zapLogger.Error("database unavailable at startup", zap.Error(err))
		db.StartSchemaRetry(ctx, postgresDB, schemaRetryInterval, zapLogger.Named("db"))
	}

	if len(options.SupportedLocales) > 0 {
		locale.Supported = options.SupportedLocales
	}

	// Initialize repositories.
	collectionRepo := repository.NewPostgresCollectionRepository(postgresDB)
	assetRepo := repository.NewPostgresAssetRepository(postgresDB)
	healthRepo := repository.NewPostgresHealthRepository(postgresDB)

	// Image pipeline with optional TinyPNG compression.
	var compressor imaging.Compressor
	if tinify := imaging.NewTinifyCompressor(options.TinifyAPIKey); tinify != nil {
		compressor = tinify
	}
	pipeline := imaging.NewPipeline(compressor, zapLogger.Named("imaging"))
	pipeline.MaxBytes = int(options.MaxUploadBytes)

	// Initialize business-logic services.
	assetService := service.NewAssetService(assetRepo, pipeline, zapLogger.Named("assets"))
	assetService.MaxResumeBytes = options.MaxResumeBytes
	assetService.DefaultLocale = options.DefaultLocale
	collectionService := service.NewCollectionService(collectionRepo, assetRepo, validator.New(), zapLogger.Named("collections")).
		WithDefaultLocale(options.DefaultLocale)
	healthService := service.NewHealthService(healthRepo, zapLogger.Named("health"))

	// Create HTTP handlers.
	healthHandler := &http.HealthHandler{Checker: healthService}
	publicHandler := &http.PublicHandler{Assets: assetService, Snapshots: collectionService, Log: zapLogger}
	adminHandler := &http.AdminHandler{
		Collections:      collectionService,
		Assets:           assetService,
		Log:              zapLogger,
		MaxUploadBytes:   options.MaxUploadBytes,
		SupportedLocales: locale.Supported,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(
		healthHandler,
		publicHandler,
		adminHandler,
		middleware.AdminAuth(options.AdminUsername, options.AdminPassword),
		middleware.RequireDatabase(healthService, zapLogger),
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server", zap.String("addr", options.Port), zap.Bool("tls", options.TLSEnabled()))
		if options.TLSEnabled() {
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
