// transport предоставляет набор декораторов http.RoundTripper для исходящих
// вызовов к REST-бэкенду: request id, user-agent, таймаут, логирование, метрики.
package transport

import (
	"context"
	"net/http"
)

// Middleware оборачивает RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc - адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain применяет мидлвары к base: первый в списке - самый внешний.
// base == nil - http.DefaultTransport.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}

	return base
}

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxEndpoint
)

// ContextWithRequestID кладёт request id, который WithRequestID отправит в X-Request-Id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

// RequestIDFromContext достаёт request id из контекста.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

// WithEndpoint помечает вызов логическим именем эндпойнта (login, search, ...)
// для логов и метрик.
func WithEndpoint(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxEndpoint, name)
}

// Endpoint возвращает имя эндпойнта; по умолчанию - путь запроса.
func Endpoint(r *http.Request) string {
	if v, _ := r.Context().Value(ctxEndpoint).(string); v != "" {
		return v
	}

	return r.URL.Path
}
