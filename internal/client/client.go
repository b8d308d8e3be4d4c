// client - REST-клиент бэкенда магазина (simplejwt + search + products).
//
// Основные аспекты:
//   - Авторизованные вызовы (search, products) собираются через session.BuildRequest;
//     каждый ответ проходит session.Classify, отказ обрабатывает session.HandleVerdict.
//   - Вызовы /token/* идут без Authorization.
//   - Повторы (retry.Policy) применяются только к GET и только на ошибки
//     транспорта и 5xx.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pribylovaa/go-shop-client/internal/client/transport"
	"github.com/pribylovaa/go-shop-client/internal/metrics"
	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
	"github.com/pribylovaa/go-shop-client/internal/retry"
	"github.com/pribylovaa/go-shop-client/internal/session"
)

// DefaultBaseURL - адрес бэкенда по умолчанию.
const DefaultBaseURL = "http://localhost:8000/api"

const maxBodySize = 4 << 20

// Эндпойнты (метка для логов и метрик).
const (
	EndpointLogin    = "login"
	EndpointVerify   = "verify"
	EndpointRefresh  = "refresh"
	EndpointSearch   = "search"
	EndpointProducts = "products"
)

// Options - параметры клиента.
type Options struct {
	// Transport - базовый RoundTripper; nil - http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
	Metrics   *metrics.Client
	UserAgent string
	// Timeout на один вызов; 0 - без таймаута.
	Timeout time.Duration
	Retry   retry.Policy
}

// Client - клиент REST-бэкенда поверх сессии.
type Client struct {
	base    *url.URL
	http    *http.Client
	sess    *session.Session
	retry   retry.Policy
	metrics *metrics.Client
}

// New собирает клиент: цепочка транспорта request id -> user-agent -> timeout -> logging -> metrics.
func New(baseURL string, sess *session.Session, opts Options) (*Client, error) {
	const op = "client.New"

	if sess == nil {
		return nil, fmt.Errorf("%s: nil session", op)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", op, u.Scheme)
	}

	rt := transport.Chain(opts.Transport,
		transport.WithRequestID(),
		transport.WithUserAgent(opts.UserAgent),
		transport.WithTimeout(opts.Timeout),
		transport.WithLogging(opts.Logger),
		transport.WithMetrics(opts.Metrics),
	)

	p := opts.Retry
	if p.MaxAttempts < 1 {
		p = retry.None()
	}

	return &Client{
		base:    u,
		http:    &http.Client{Transport: rt},
		sess:    sess,
		retry:   p,
		metrics: opts.Metrics,
	}, nil
}

// Session возвращает сессию клиента.
func (c *Client) Session() *session.Session { return c.sess }

// BaseURL - нормализованный адрес бэкенда.
func (c *Client) BaseURL() string { return c.base.String() }

// exchange - результат одного вызова.
type exchange struct {
	status int
	body   []byte
}

// call описывает исходящий вызов.
type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	auth     bool
}

// do выполняет вызов с учётом политики повторов.
// 5xx возвращается как *StatusError, ошибки сети - как ErrTransport.
func (c *Client) do(ctx context.Context, cl call) (exchange, error) {
	op := "client." + cl.endpoint

	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return exchange{}, fmt.Errorf("%s: encode body: %w", op, err)
		}
		payload = b
	}

	var spec *session.Request
	if cl.auth {
		s, err := c.sess.BuildRequest(ctx, cl.method, payload)
		if err != nil {
			return exchange{}, fmt.Errorf("%s: %w", op, err)
		}
		spec = s
	} else {
		h := make(http.Header, 1)
		h.Set("Content-Type", "application/json")
		spec = &session.Request{Method: cl.method, Header: h, Body: payload}
	}

	target := c.resolve(cl.path, cl.query)

	policy := c.retry
	if spec.Method != http.MethodGet {
		policy = retry.None()
	}

	ctx = transport.WithEndpoint(ctx, cl.endpoint)

	ex, err := retry.Do(ctx, policy, retryable, func(ctx context.Context) (exchange, error) {
		return c.roundTrip(ctx, cl.endpoint, target, spec)
	})
	if err != nil {
		if errors.Is(err, ErrTransport) {
			logctx.From(ctx).Warn("backend_unreachable",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}

		return ex, fmt.Errorf("%s: %w", op, err)
	}

	return ex, nil
}

func (c *Client) roundTrip(ctx context.Context, endpoint, target string, spec *session.Request) (exchange, error) {
	var body io.Reader
	if spec.Body != nil {
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return exchange{}, err
	}
	req.Header = spec.Header.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return exchange{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return exchange{}, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	ex := exchange{status: resp.StatusCode, body: b}
	if resp.StatusCode >= http.StatusInternalServerError {
		return ex, statusError(endpoint, ex)
	}

	return ex, nil
}

func retryable(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}

	var se *StatusError
	if errors.Is(err, ErrTransport) || (errors.As(err, &se) && se.Temporary()) {
		return retry.Retry
	}

	return retry.Stop
}

func (c *Client) resolve(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// checkVerdict прогоняет тело авторизованного ответа через Classify.
// Если запрос шёл с токеном вызывающего (session.ContextWithToken), отказ
// относится к этому токену: сохранённая пара не трогается, уведомления нет.
func (c *Client) checkVerdict(ctx context.Context, op string, body []byte) error {
	_, caller := session.TokenFromContext(ctx)
	return c.verdict(ctx, op, body, caller)
}

// verdict при отказе считает метрику и, для сохранённой пары, запускает HandleVerdict.
func (c *Client) verdict(ctx context.Context, op string, body []byte, caller bool) error {
	if session.Classify(body) != session.RejectedNeedsLogin {
		return nil
	}

	c.metrics.ObserveRejection()

	if caller {
		logctx.From(ctx).Info("caller_token_rejected", slog.String("op", op))
		return fmt.Errorf("%s: %w", op, ErrRejected)
	}

	if err := c.sess.HandleVerdict(ctx, session.RejectedNeedsLogin); err != nil {
		logctx.From(ctx).Error("handle_verdict_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return fmt.Errorf("%s: %w", op, ErrRejected)
}

func statusError(endpoint string, ex exchange) *StatusError {
	return &StatusError{
		Endpoint: endpoint,
		Status:   ex.status,
		Detail:   gjson.GetBytes(ex.body, "detail").String(),
	}
}

// isJSON - тело непустое и является корректным JSON.
func isJSON(b []byte) bool {
	return len(bytes.TrimSpace(b)) > 0 && gjson.ValidBytes(b)
}
