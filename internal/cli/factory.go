package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/config"
	"github.com/aretw0/guidepost/pkg/adapters/file"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/guidepost/pkg/adapters/redis"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Runtime bundles everything a command needs: the guide, its metrics and the
// resources to release on exit.
type Runtime struct {
	Config   *config.Config
	Guide    *guidepost.Guide
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	closers []func() error
}

// Setup builds a Runtime from configuration.
// Lifecycle events are logged at info level and counted in a private Prometheus registry.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...guidepost.Option) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rt.Metrics = observability.NewMetrics(reg)
	rt.Gatherer = reg

	store, locker, closer, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}

	guideOpts := []guidepost.Option{
		guidepost.WithLogger(logger),
		guidepost.WithStore(store),
		guidepost.WithLifecycleHooks(rt.Metrics.Hooks()),
		guidepost.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}
	if locker != nil {
		guideOpts = append(guideOpts, guidepost.WithLocker(locker))
	}

	rt.Guide, err = guidepost.New(cfg.ToursDir, append(guideOpts, opts...)...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing guidepost: %w", err)
	}
	return rt, nil
}

// Close releases the session store.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// openStore selects the session store named by cfg.Store.
func openStore(ctx context.Context, cfg *config.Config) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	switch cfg.Store {
	case config.StoreFile:
		return file.New(cfg.SessionsDir), nil, nil, nil
	case config.StoreRedis:
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		var locker ports.DistributedLocker
		if cfg.Redis.Locking {
			locker = redisAdapter.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		return store, locker, store.Close, nil
	default:
		return memory.NewStore(), nil, nil, nil
	}
}
