package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pribylovaa/go-shop-client/internal/client"
	"github.com/pribylovaa/go-shop-client/internal/config"
	"github.com/pribylovaa/go-shop-client/internal/metrics"
	"github.com/pribylovaa/go-shop-client/internal/notify"
	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
	"github.com/pribylovaa/go-shop-client/internal/retry"
	"github.com/pribylovaa/go-shop-client/internal/session"
	"github.com/pribylovaa/go-shop-client/internal/storage"
	"github.com/pribylovaa/go-shop-client/internal/storage/disk"
	"github.com/pribylovaa/go-shop-client/internal/storage/memory"
	"github.com/pribylovaa/go-shop-client/internal/storage/redis"
	"github.com/pribylovaa/go-shop-client/internal/storage/sqlite"
)

// appIO - куда команды пишут результат и уведомления.
type appIO struct {
	stdout  io.Writer
	stderr  io.Writer
	serving bool
}

// app - собранные зависимости, общие для всех команд.
type app struct {
	ctx      context.Context
	cfg      *config.Config
	log      *slog.Logger
	stdout   io.Writer
	store    storage.Store
	session  *session.Session
	client   *client.Client
	registry *prometheus.Registry
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, out appIO) (*app, error) {
	const op = "main.newApp"

	store, err := openStore(ctx, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// CLI сообщает пользователю в stderr, шлюз пишет предупреждение в лог.
	var notifier notify.Notifier = notify.NewWriter(out.stderr)
	if out.serving {
		notifier = notify.NewLog(log)
	}

	sess, err := session.New(store, session.Options{
		EvictOnRejection: cfg.Session.EvictOnRejection,
		Notifier:         notifier,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cl, err := client.New(cfg.API.BaseURL, sess, client.Options{
		Logger:    log,
		Metrics:   metrics.New(reg),
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		Retry:     retryPolicy(cfg.Retry, log),
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &app{
		ctx:      logctx.Into(ctx, log),
		cfg:      cfg,
		log:      log,
		stdout:   out.stdout,
		store:    store,
		session:  sess,
		client:   cl,
		registry: reg,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// openStore выбирает хранилище сессии по конфигу.
func openStore(ctx context.Context, cfg config.SessionConfig) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreDisk:
		return disk.New(cfg.StateDir())
	case config.StoreRedis:
		return redis.New(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.RedisTTL)
	case config.StoreSQLite:
		return sqlite.Open(cfg.SQLiteFile())
	default:
		return nil, errors.New("unknown session store " + cfg.Store)
	}
}

func retryPolicy(cfg config.RetryConfig, log *slog.Logger) retry.Policy {
	return retry.Policy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			log.Debug("request_retry",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("err", err.Error()),
			)
		},
	}
}
