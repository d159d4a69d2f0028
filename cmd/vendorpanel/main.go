package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MKdir98/vendor-panel/internal/panel/auth"
	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	"github.com/MKdir98/vendor-panel/internal/panel/catalog"
	"github.com/MKdir98/vendor-panel/internal/panel/collection"
	"github.com/MKdir98/vendor-panel/internal/panel/config"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/session"
	"github.com/MKdir98/vendor-panel/internal/panel/shipping"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initialise server", zap.Error(err))
	}
	defer cleanup()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("vendor panel listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("base_path", cfg.BasePath),
		zap.String("environment", cfg.Environment),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
	logger.Info("vendor panel stopped")
}

func build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*http.Server, func(), error) {
	cleanup := func() {}
	metrics := observability.NewMetrics()

	client, err := backend.New(cfg.BackendURL, backend.Options{
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
		Burst:   cfg.BackendBurst,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, cleanup, err
	}

	courier := status.Courier{ProviderKey: cfg.CourierProvider, PickupOptionType: cfg.CourierProvider + "-pickup"}

	ordersSvc, err := orders.NewHTTPService(client)
	if err != nil {
		return nil, cleanup, err
	}
	collectionSvc, err := collection.NewHTTPService(client, courier)
	if err != nil {
		return nil, cleanup, err
	}
	stockSvc, err := locations.NewHTTPStockLocationService(client)
	if err != nil {
		return nil, cleanup, err
	}
	categorySvc, err := catalog.NewHTTPService(client)
	if err != nil {
		return nil, cleanup, err
	}
	shippingSvc, err := shipping.NewHTTPService(client)
	if err != nil {
		return nil, cleanup, err
	}
	authSvc, err := auth.NewHTTPService(client)
	if err != nil {
		return nil, cleanup, err
	}
	referenceSvc, err := locations.NewHTTPReferenceService(client)
	if err != nil {
		return nil, cleanup, err
	}

	var cache locations.Cache = locations.NewMemoryCache(10 * time.Minute)
	if cfg.RedisAddr != "" {
		redisClient, err := locations.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable; using in-memory reference cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = locations.NewRedisCache(redisClient, "vendor-panel:")
			cleanup = func() { _ = redisClient.Close() }
		}
	}
	references := locations.NewCachedReferenceService(referenceSvc, cache, cfg.ReferenceTTL, metrics)

	var blockKey []byte
	if cfg.SessionBlockKey != "" {
		blockKey = []byte(cfg.SessionBlockKey)
	}
	sessions, err := session.NewManager(session.Config{
		HashKey:      []byte(cfg.SessionHashKey),
		BlockKey:     blockKey,
		CookiePath:   middleware.NormalizeBasePath(cfg.BasePath),
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return nil, cleanup, err
	}

	catalogMessages, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return nil, cleanup, err
	}

	srv := httpserver.New(httpserver.Config{
		Address:       cfg.HTTPAddr,
		BasePath:      cfg.BasePath,
		Environment:   cases.Title(language.English).String(cfg.Environment),
		Logger:        logger,
		Metrics:       metrics,
		Catalog:       catalogMessages,
		Sessions:      sessions,
		Authenticator: middleware.NewTokenAuthenticator("seller", time.Now),
		Auth:          authSvc,
		CookieSecure:  cfg.CookieSecure,
		LoginRate:     cfg.LoginRate,
		UI: ui.Dependencies{
			Orders:          ordersSvc,
			Collection:      collectionSvc,
			CollectionStore: collection.NewStore(2 * time.Hour),
			References:      references,
			StockLocations:  stockSvc,
			Categories:      categorySvc,
			Shipping:        shippingSvc,
			Metrics:         metrics,
			Courier:         courier,
			LabelBase:       cfg.BackendPublicURL,
			CountryCode:     cfg.CountryCode,
		},
	})
	return srv, cleanup, nil
}
