package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-shop-client/internal/metrics"
	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// capHandler - тестовый slog.Handler, собирает attrs последней записи.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

// recordRT - конечный RoundTripper, запоминает запрос.
func recordRT(seen **http.Request, status int) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		*seen = r
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    r,
		}, nil
	})
}

func newReq(t *testing.T, ctx context.Context) *http.Request {
	t.Helper()

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://backend.local/api/search/?q=shoe", nil)
	require.NoError(t, err)
	return r
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	var seen *http.Request
	rt := Chain(recordRT(&seen, 200), mw("m1"), mw("m2"))
	_, err := rt.RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m2"}, order)
}

func TestWithRequestID_GeneratesAndReusesContextID(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	rt := Chain(recordRT(&seen, 200), WithRequestID())

	orig := newReq(t, context.Background())
	_, err := rt.RoundTrip(orig)
	require.NoError(t, err)

	rid := seen.Header.Get("X-Request-Id")
	_, err = uuid.Parse(rid)
	require.NoError(t, err)
	require.Empty(t, orig.Header.Get("X-Request-Id"), "original request must not be mutated")

	_, err = rt.RoundTrip(newReq(t, ContextWithRequestID(context.Background(), "rid-123")))
	require.NoError(t, err)
	require.Equal(t, "rid-123", seen.Header.Get("X-Request-Id"))
}

func TestWithUserAgent(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	_, err := Chain(recordRT(&seen, 200), WithUserAgent("shop-client")).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Equal(t, "shop-client", seen.Header.Get("User-Agent"))

	_, err = Chain(recordRT(&seen, 200), WithUserAgent("")).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Empty(t, seen.Header.Get("User-Agent"))
}

func TestWithTimeout_SetsDeadlineAndKeepsBodyReadable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":[]}`)
	}))
	t.Cleanup(srv.Close)

	var hadDeadline bool
	probe := func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			_, hadDeadline = r.Context().Deadline()
			return next.RoundTrip(r)
		})
	}

	cl := &http.Client{Transport: Chain(nil, WithTimeout(time.Second), probe)}
	resp, err := cl.Get(srv.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	require.True(t, hadDeadline)
	require.JSONEq(t, `{"hits":[]}`, string(body))
}

func TestWithTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	parentDL, _ := parent.Deadline()

	var seen *http.Request
	_, err := Chain(recordRT(&seen, 200), WithTimeout(time.Hour)).RoundTrip(newReq(t, parent))
	require.NoError(t, err)

	childDL, ok := seen.Context().Deadline()
	require.True(t, ok)
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestWithTimeout_ZeroPassThrough(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	_, err := Chain(recordRT(&seen, 200), WithTimeout(0)).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)

	_, ok := seen.Context().Deadline()
	require.False(t, ok)
}

func TestWithTimeout_ExpiresSlowUpstream(t *testing.T) {
	t.Parallel()

	slow := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	})

	_, err := Chain(slow, WithTimeout(20*time.Millisecond)).RoundTrip(newReq(t, context.Background()))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLogging_SingleRecordWithoutSecrets(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	var seen *http.Request
	rt := Chain(recordRT(&seen, 200), WithLogging(slog.New(h)))

	r := newReq(t, WithEndpoint(context.Background(), "search"))
	r.Header.Set("Authorization", "Bearer secret-token")
	r.Header.Set("X-Request-Id", "rid-1")

	_, err := rt.RoundTrip(r)
	require.NoError(t, err)

	require.Equal(t, 1, h.count["http_client"])
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.Equal(t, "search", h.attrs["endpoint"])
	require.Equal(t, "/api/search/", h.attrs["path"])
	require.Equal(t, "rid-1", h.attrs["request_id"])
	require.EqualValues(t, 200, h.attrs["status"])

	for _, v := range h.attrs {
		if s, ok := v.(string); ok {
			require.NotContains(t, s, "secret-token")
			require.NotContains(t, s, "shoe")
		}
	}
}

func TestWithLogging_PrefersContextLogger(t *testing.T) {
	t.Parallel()

	base := &capHandler{}
	reqScoped := &capHandler{}

	var seen *http.Request
	rt := Chain(recordRT(&seen, 503), WithLogging(slog.New(base)))

	ctx := logctx.Into(context.Background(), slog.New(reqScoped))
	_, err := rt.RoundTrip(newReq(t, ctx))
	require.NoError(t, err)

	require.Zero(t, base.count["http_client"])
	require.Equal(t, 1, reqScoped.count["http_client"])
	require.Equal(t, slog.LevelWarn, reqScoped.lastLvl)
}

func TestWithLogging_TransportError(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	boom := errors.New("connection refused")
	failing := RoundTripperFunc(func(*http.Request) (*http.Response, error) { return nil, boom })

	_, err := Chain(failing, WithLogging(slog.New(h))).RoundTrip(newReq(t, context.Background()))
	require.ErrorIs(t, err, boom)
	require.Equal(t, slog.LevelError, h.lastLvl)
	require.Equal(t, "connection refused", h.attrs["err"])
}

func TestWithMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	var seen *http.Request
	_, err := Chain(recordRT(&seen, 200), WithMetrics(m)).RoundTrip(newReq(t, WithEndpoint(context.Background(), "search")))
	require.NoError(t, err)

	failing := RoundTripperFunc(func(*http.Request) (*http.Response, error) { return nil, errors.New("x") })
	_, _ = Chain(failing, WithMetrics(m)).RoundTrip(newReq(t, WithEndpoint(context.Background(), "search")))

	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("search", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("search", "error")))

	// nil метрики - пропуск.
	_, err = Chain(recordRT(&seen, 200), WithMetrics(nil)).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
}

func TestEndpoint_DefaultsToPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/api/search/", Endpoint(newReq(t, context.Background())))
}
