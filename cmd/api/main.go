package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/shelf-api/internal/modules/note"
	"github.com/georgemunganga/shelf-api/internal/modules/product"
	"github.com/georgemunganga/shelf-api/internal/platform/cache"
	"github.com/georgemunganga/shelf-api/internal/platform/config"
	"github.com/georgemunganga/shelf-api/internal/platform/health"
	"github.com/georgemunganga/shelf-api/internal/platform/httpx"
	"github.com/georgemunganga/shelf-api/internal/platform/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// ── Storage ─────────────────────────────────────────────
	repos, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()
	logger.Info("Document store ready", zap.String("driver", cfg.StoreDriver))

	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Listing cache ready",
		zap.String("driver", cfg.CacheDriver),
		zap.String("namespace", cfg.CacheNamespace),
		zap.Duration("ttl", cfg.CacheTTL),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics := cache.NewMetrics(registry)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		router.Use(httpx.CORS(cfg.CORSAllowedOrigins))
	}

	noteService := note.NewService(repos.notes)
	note.NewHandler(noteService, logger).RegisterRoutes(router)

	productService := product.NewService(repos.products, store, product.CacheOptions{
		Namespace: cfg.CacheNamespace,
		TTL:       cfg.CacheTTL,
	}, cacheMetrics, logger)
	product.NewHandler(productService, logger).RegisterRoutes(router)

	health.NewHandler(map[string]health.Check{
		"store": repos.ping,
		"cache": store.Ping,
	}).RegisterRoutes(router)

	if cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Shelf API server starting",
			zap.String("address", srv.Addr),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
