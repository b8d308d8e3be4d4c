package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	gwhttp "github.com/pribylovaa/go-shop-client/internal/http"
	"github.com/pribylovaa/go-shop-client/internal/http/handlers"
)

type ServeCmd struct {
	Addr string `help:"Listen address; http.host:http.port from config if empty"`
}

// Run поднимает шлюз и блокируется до сигнала остановки.
func (c *ServeCmd) Run(a *app) error {
	const op = "main.serve"

	addr := c.Addr
	if addr == "" {
		addr = a.cfg.HTTP.Addr()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		a.log.Error("http_listen_failed", slog.String("addr", addr), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	return serve(a.context(), a, ln)
}

// serve обслуживает ln до отмены ctx, затем корректно останавливает сервер.
func serve(ctx context.Context, a *app, ln net.Listener) error {
	const op = "main.serve"

	log := a.log

	var ready atomic.Bool

	srv := &http.Server{
		Handler:           newMux(a, &ready),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("http_listen_start", slog.String("addr", ln.Addr().String()))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("gateway_ready", slog.String("api", a.client.BaseURL()))

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	if serveErr != nil {
		return fmt.Errorf("%s: %w", op, serveErr)
	}

	return nil
}

// newMux - служебные ручки плюс API шлюза.
func newMux(a *app, ready *atomic.Bool) http.Handler {
	api := gwhttp.NewRouter(handlers.New(a.client, a.session), gwhttp.Options{
		Logger:  a.log,
		Timeout: a.cfg.Timeouts.Service,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.Handle("/", api)

	return mux
}
