package transport

import (
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
)

// WithLogging - логирование исходящих вызовов.
// Поведение:
//   - берёт логгер из контекста запроса (pkg/log), иначе base;
//   - пишет одну финальную запись: msg="http_client", endpoint, method, path, status, dur;
//   - ошибка транспорта пишется уровнем Error, 5xx - Warn.
//
// Безопасность: не логирует тело, query string и заголовок Authorization.
func WithLogging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			l := base
			if from, ok := logctx.Lookup(r.Context()); ok {
				l = from
			}

			attrs := []slog.Attr{
				slog.String("endpoint", Endpoint(r)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			}
			if rid := r.Header.Get("X-Request-Id"); rid != "" {
				attrs = append(attrs, slog.String("request_id", rid))
			}

			resp, err := next.RoundTrip(r)
			attrs = append(attrs, slog.Duration("dur", time.Since(start)))

			if err != nil {
				attrs = append(attrs, slog.String("err", err.Error()))
				l.LogAttrs(r.Context(), slog.LevelError, "http_client", attrs...)
				return nil, err
			}

			level := slog.LevelInfo
			if resp.StatusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			l.LogAttrs(r.Context(), level, "http_client", attrs...)

			return resp, nil
		})
	}
}
