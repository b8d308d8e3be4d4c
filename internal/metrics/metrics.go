// metrics - prometheus-коллекторы клиента бэкенда.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shop_client"

// Client - метрики исходящих вызовов и сессии.
type Client struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Rejections      prometheus.Counter
	Logins          *prometheus.CounterVec
}

// New создаёт метрики и регистрирует их в reg. nil - регистрация не выполняется.
func New(reg prometheus.Registerer) *Client {
	m := &Client{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total backend requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Backend request duration in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		Rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Responses classified as token_not_valid.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.Rejections, m.Logins)
	}

	return m
}

// Login results.
const (
	LoginOK     = "ok"
	LoginFailed = "failed"
	LoginError  = "error"
)

func (m *Client) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Client) ObserveRejection() {
	if m == nil {
		return
	}
	m.Rejections.Inc()
}
