package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pribylovaa/go-shop-client/internal/metrics"
)

// WithMetrics считает вызовы и их длительность по эндпойнтам. m == nil - no-op.
func WithMetrics(m *metrics.Client) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			endpoint := Endpoint(r)
			start := time.Now()

			resp, err := next.RoundTrip(r)
			m.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			m.RequestsTotal.WithLabelValues(endpoint, status).Inc()

			return resp, err
		})
	}
}
