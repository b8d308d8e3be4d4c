package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-shop-client/internal/models"
	"github.com/pribylovaa/go-shop-client/internal/session"
)

// Backend - операции клиента бэкенда, которые нужны шлюзу.
type Backend interface {
	Login(ctx context.Context, in models.LoginRequest) (models.TokenPair, error)
	Verify(ctx context.Context, token string) (bool, error)
	Refresh(ctx context.Context) (models.TokenPair, error)
	Search(ctx context.Context, params url.Values) (models.SearchResult, error)
	Products(ctx context.Context) (models.Payload, error)
	Logout(ctx context.Context) error
}

// StatusReader отдаёт сводку о сессии.
type StatusReader interface {
	Status(ctx context.Context) (session.Status, error)
}

// Handlers агрегирует зависимости шлюза.
type Handlers struct {
	Backend Backend
	Session StatusReader
}

func New(b Backend, s StatusReader) *Handlers {
	return &Handlers{Backend: b, Session: s}
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeRaw отдаёт уже готовый JSON без перекодирования.
func writeRaw(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// decodeStrict - строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
