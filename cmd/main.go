// File: price-compare-storefront/cmd/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-compare-storefront/internal/api"
	"price-compare-storefront/internal/catalog"
	"price-compare-storefront/internal/config"
	"price-compare-storefront/internal/logger"
	"price-compare-storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

const (
	defaultAppName = "PriceCompareStorefront"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		os.Stderr.WriteString("FATAL: Error loading .env file: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("FATAL: Error loading configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(defaultAppName, cfg.IsDevelopment(), cfg.LogLevel)
	log.Info().
		Str("app_env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("catalog_source", cfg.Catalog.Source).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Startup fetch ---
	metrics := api.NewMetrics()
	grpcAPIHandler := api.NewGRPCHandler(log)
	loader := catalog.NewLoader()

	go loadCatalog(ctx, log, cfg, loader, metrics, grpcAPIHandler)

	// --- Setup & Start HTTP Server ---
	sessions := api.NewSessionRegistry(cfg.Session.IdleTTL, cfg.Session.MaxSessions)
	httpAPIHandler := api.NewHTTPHandler(loader, sessions, metrics, log)

	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, log, metrics)
	registerHealthCheck(httpRouter, log, loader)
	httpRouter.Handle("/metrics", metrics.Handler())
	httpAPIHandler.RegisterRoutes(httpRouter)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      corsHandler.Handler(httpRouter),
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		log.Info().Str("port", cfg.HttpServer.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server ListenAndServe error")
		}
		log.Info().Msg("HTTP server has stopped")
	}()

	go sweepSessions(ctx, log, sessions, metrics, cfg.Session.IdleTTL)

	// --- Setup & Start gRPC Server ---
	grpcServer := grpc.NewServer()
	grpcAPIHandler.Register(grpcServer)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GrpcServer.Port).Msg("Failed to listen for gRPC")
	}

	go func() {
		log.Info().Str("port", cfg.GrpcServer.Port).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Fatal().Err(err).Msg("gRPC server Serve error")
		}
		log.Info().Msg("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received, starting graceful shutdown")
	shutdown(log, httpServer, grpcServer, grpcAPIHandler)
	log.Info().Msg("Service shutdown sequence finished")
}

func loadCatalog(
	ctx context.Context,
	log zerolog.Logger,
	cfg *config.Config,
	loader *catalog.Loader,
	metrics *api.Metrics,
	grpcAPIHandler *api.GRPCHandler,
) {
	// Opening the source counts against the fetch timeout.
	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.FetchTimeout)
	defer cancel()

	start := time.Now()
	reader, closer, err := store.Open(fetchCtx, cfg)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Failed to open catalog source")
		grpcAPIHandler.ReportCatalog(loader.Fail(err))
		return
	}
	// The catalog is read once; the source is not needed afterwards.
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing catalog source")
		}
	}()

	snap := loader.Run(fetchCtx, reader, cfg.Catalog.ProductLimit)
	grpcAPIHandler.ReportCatalog(snap)
	metrics.SetCatalogProducts(len(snap.Catalog.Products))

	if snap.Err != nil {
		log.Error().Err(snap.Err).Dur("elapsed", time.Since(start)).Msg("Catalog fetch failed")
		return
	}
	log.Info().
		Int("products", len(snap.Catalog.Products)).
		Int("categories", len(snap.Catalog.Categories)).
		Int("stores", len(snap.Catalog.Stores)).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog loaded")
}

func setupBaseMiddleware(router *chi.Mux, log zerolog.Logger, metrics *api.Metrics) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(log))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	log.Debug().Msg("Base HTTP middleware registered")
}

func registerHealthCheck(router *chi.Mux, log zerolog.Logger, loader *catalog.Loader) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, the payload carries the catalog status
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"catalog":     loader.Snapshot().Status,
		})
	})
	log.Debug().Str("path", healthPath).Msg("HTTP health check registered")
}

func sweepSessions(ctx context.Context, log zerolog.Logger, sessions *api.SessionRegistry, metrics *api.Metrics, idleTTL time.Duration) {
	if idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired idle sessions")
			}
			metrics.SetActiveSessions(sessions.Len())
		}
	}
}

func shutdown(
	log zerolog.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	grpcAPIHandler *api.GRPCHandler,
) {
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	grpcAPIHandler.Shutdown()
	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server graceful shutdown failed")
	} else {
		log.Info().Msg("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		log.Info().Msg("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		log.Warn().Err(shutdownCtx.Err()).Msg("gRPC server graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}
}
