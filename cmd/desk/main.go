package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/config"
	"github.com/boddenberg/commission-desk-go/internal/domain"
	"github.com/boddenberg/commission-desk-go/internal/handler"
	"github.com/boddenberg/commission-desk-go/internal/infra/cache"
	"github.com/boddenberg/commission-desk-go/internal/infra/localstore"
	"github.com/boddenberg/commission-desk-go/internal/infra/observability"
	"github.com/boddenberg/commission-desk-go/internal/infra/postgres"
	"github.com/boddenberg/commission-desk-go/internal/infra/resilience"
	"github.com/boddenberg/commission-desk-go/internal/infra/supabase"
	"github.com/boddenberg/commission-desk-go/internal/port"
	"github.com/boddenberg/commission-desk-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()
	backend := cfg.ResolveBackend()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage_backend", backend),
		zap.String("timezone", cfg.Timezone),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("sync_debounce", cfg.SyncDebounce),
		zap.String("reload_schedule", cfg.ReloadSchedule),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "commission-desk")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence ---
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(startCtx, cfg, backend, logger)
	if err != nil {
		cancelStart()
		logger.Fatal("failed to open store", zap.String("backend", backend), zap.Error(err))
	}
	defer closeStore()

	snap, err := store.LoadAll(startCtx)
	cancelStart()
	if err != nil {
		logger.Fatal("failed to load desk state", zap.String("backend", backend), zap.Error(err))
	}

	// --- Services ---
	queue := service.NewSyncQueue(store, cfg.SyncDebounce, cfg.MaxConcurrency, metrics, logger)
	loc := cfg.Location()
	chartCache := cache.New[*domain.CommercialChart](cfg.CacheTTL)
	defer chartCache.Close()
	desk := service.NewDesk(snap, queue.Enqueue, metrics, logger,
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
		service.WithChartCache(chartCache),
	)
	authSvc := service.NewAuthService(desk, cfg.JWTSecret, cfg.JWTAccessTTL, logger)

	var reloader *service.Reloader
	if cfg.ReloadSchedule != "" {
		reloader, err = service.NewReloader(cfg.ReloadSchedule, loc, desk, queue, store, logger)
		if err != nil {
			logger.Fatal("invalid reload schedule", zap.Error(err))
		}
		reloader.Start()
		logger.Info("scheduled reload enabled", zap.String("schedule", cfg.ReloadSchedule))
	}

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Desk:           desk,
		Auth:           authSvc,
		Queue:          queue,
		Store:          store,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port), zap.String("backend", store.Name()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}
	if reloader != nil {
		reloader.Stop(ctx)
	}
	if err := queue.Flush(ctx); err != nil {
		logger.Error("pending changes were not stored", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openStore builds the persistence backend chosen by configuration. The
// returned close function releases its connections.
func openStore(ctx context.Context, cfg *config.Config, backend string, logger *zap.Logger) (port.Store, func(), error) {
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	switch backend {
	case config.BackendSupabase:
		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		client := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase"),
			resilienceCfg,
			logger,
		)
		return client, func() {}, nil

	case config.BackendPostgres:
		logger.Info("using Postgres as data backend")
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, max(cfg.MaxConcurrency, 2))
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(pool, resilience.NewCircuitBreaker("postgres"), resilienceCfg, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendRedis:
		logger.Info("using Redis as data backend")
		kv, err := localstore.NewRedisKV(cfg.RedisURL, "")
		if err != nil {
			return nil, nil, err
		}
		return localstore.NewStore(kv, config.BackendRedis, logger), func() { _ = kv.Close() }, nil

	case config.BackendFile:
		logger.Info("using local files as data backend", zap.String("data_dir", cfg.DataDir))
		kv, err := localstore.NewFileKV(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return localstore.NewStore(kv, config.BackendFile, logger), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}
