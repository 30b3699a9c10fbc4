// Package bootstrap builds the driven adapters selected by configuration.
// It is shared by the server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ericfisherdev/postpilot/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/postpilot/internal/adapter/driven/redisstore"
	"github.com/ericfisherdev/postpilot/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/postpilot/internal/config"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
	"github.com/ericfisherdev/postpilot/internal/observability"
)

// OpenUserStore opens the backend named by cfg.Store and wraps it with
// metrics. The returned close function releases the backend.
func OpenUserStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (driven.UserStore, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqlite.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
		}
		logger.Info("user store opened", "backend", cfg.Store, "path", cfg.DBPath)
		return observability.InstrumentUserStore(sqlite.NewUserRepo(db), metrics, cfg.Store), db.Close, nil

	case config.StoreFile:
		logger.Info("user store opened", "backend", cfg.Store, "path", cfg.UsersFile)
		store := filestore.New(cfg.UsersFile, logger)
		return observability.InstrumentUserStore(store, metrics, cfg.Store), func() error { return nil }, nil

	case config.StoreRedis:
		store, err := redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		logger.Info("user store opened", "backend", cfg.Store, "prefix", cfg.RedisPrefix)
		return observability.InstrumentUserStore(store, metrics, cfg.Store), store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// NewUpstreamClient returns the http.Client used for provider calls: traced
// with otelhttp and bounded by timeout.
func NewUpstreamClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
