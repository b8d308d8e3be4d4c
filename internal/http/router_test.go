package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-shop-client/internal/client"
	"github.com/pribylovaa/go-shop-client/internal/http/handlers"
	"github.com/pribylovaa/go-shop-client/internal/notify"
	"github.com/pribylovaa/go-shop-client/internal/session"
	"github.com/pribylovaa/go-shop-client/internal/storage/memory"
)

// upstream - минимальный бэкенд магазина; запоминает Authorization и X-Request-Id.
type upstream struct {
	mu   sync.Mutex
	auth []string
	rids []string
}

func (u *upstream) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u.mu.Lock()
			u.auth = append(u.auth, r.Header.Get("Authorization"))
			u.rids = append(u.rids, r.Header.Get("X-Request-Id"))
			u.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Username != "alice" || in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access":"AAA","refresh":"RRR"}`)
	})
	r.Get("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer EXPIRED" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Given token not valid for any token type","code":"token_not_valid"}`)
			return
		}
		_, _ = io.WriteString(w, `{"count":0,"next":null,"previous":null,"results":[]}`)
	})
	r.Get("/api/search/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":[{"title":"Shoe A"},{"title":"Shoe B"}]}`)
	})
	return r
}

func (u *upstream) lastAuth() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.auth[len(u.auth)-1]
}

func (u *upstream) lastRID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rids[len(u.rids)-1]
}

func newGateway(t *testing.T, basePath string) (*httptest.Server, *upstream, *atomic.Int32) {
	t.Helper()

	up := &upstream{}
	backend := httptest.NewServer(up.handler())
	t.Cleanup(backend.Close)

	var notices atomic.Int32
	sess, err := session.New(memory.New(), session.Options{
		Notifier: notify.Func(func(context.Context, notify.Notice) error {
			notices.Add(1)
			return nil
		}),
	})
	require.NoError(t, err)

	cl, err := client.New(backend.URL+"/api", sess, client.Options{Timeout: time.Second})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := httptest.NewServer(NewRouter(handlers.New(cl, sess), Options{Logger: logger, Timeout: 5 * time.Second, BasePath: basePath}))
	t.Cleanup(gw.Close)

	return gw, up, &notices
}

func send(t *testing.T, method, url, body string, hdr map[string]string) (*http.Response, string) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestGateway_LoginThenProducts(t *testing.T) {
	gw, up, _ := newGateway(t, "")

	resp, body := send(t, http.MethodPost, gw.URL+"/login", `{"username":"alice","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	require.Contains(t, body, `"logged_in":true`)

	resp, body = send(t, http.MethodGet, gw.URL+"/products", "", map[string]string{"X-Request-Id": "rid-e2e"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, body)
	require.Equal(t, "Bearer AAA", up.lastAuth())
	require.Equal(t, "rid-e2e", up.lastRID())

	resp, _ = send(t, http.MethodDelete, gw.URL+"/session", "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = send(t, http.MethodGet, gw.URL+"/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"logged_in":false`)
}

func TestGateway_LoginFailed(t *testing.T) {
	gw, _, _ := newGateway(t, "")

	resp, body := send(t, http.MethodPost, gw.URL+"/login", `{"username":"alice","password":"nope"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, `"code":"unauthenticated"`)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestGateway_CallerBearerIsForwarded(t *testing.T) {
	gw, up, notices := newGateway(t, "/api")

	resp, body := send(t, http.MethodGet, gw.URL+"/api/products", "", map[string]string{"Authorization": "Bearer EXPIRED"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, `"code":"token_not_valid"`)
	require.Contains(t, body, "Please login again")
	require.Equal(t, "Bearer EXPIRED", up.lastAuth())
	// Отказ касается токена вызывающего, а не сессии шлюза.
	require.EqualValues(t, 0, notices.Load())
}

func TestGateway_SearchWithoutToken(t *testing.T) {
	gw, up, _ := newGateway(t, "")

	resp, body := send(t, http.MethodGet, gw.URL+"/search?text=shoe", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"hits":[{"title":"Shoe A"},{"title":"Shoe B"}],"nbHits":2}`, body)
	require.Empty(t, up.lastAuth())

	resp, body = send(t, http.MethodGet, gw.URL+"/search", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, `"code":"invalid_argument"`)
}

func TestGateway_UnknownRoute(t *testing.T) {
	gw, _, _ := newGateway(t, "")

	resp, _ := send(t, http.MethodGet, gw.URL+"/nope", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
