package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// WithRequestID проставляет X-Request-Id: из заголовка запроса, из контекста
// или новый uuid. Исходный запрос не модифицируется.
func WithRequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("X-Request-Id") != "" {
				return next.RoundTrip(r)
			}

			rid := RequestIDFromContext(r.Context())
			if rid == "" {
				rid = uuid.NewString()
			}

			ctx := ContextWithRequestID(r.Context(), rid)
			r = r.Clone(ctx)
			r.Header.Set("X-Request-Id", rid)

			return next.RoundTrip(r)
		})
	}
}

// WithUserAgent проставляет User-Agent; пустое значение - no-op.
func WithUserAgent(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if ua == "" {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			r.Header.Set("User-Agent", ua)
			return next.RoundTrip(r)
		})
	}
}
