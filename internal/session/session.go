// session - клиентская сессия REST-бэкенда: хранит пару токенов,
// собирает авторизованные запросы и решает, что делать с ответом
// "token_not_valid".
//
// Основные аспекты:
//   - Состояние живёт только во внедрённом storage.Store под ключами
//     KeyAccess/KeyRefresh, сами значения пишутся как есть.
//   - Session безопасна для конкурентного использования; учётные данные
//     перезаписываются по принципу last-write-wins, уже собранные запросы
//     сохраняют свой токен.
//   - Классификация ответа (Classify) чистая; уведомление и вытеснение
//     токенов выполняет отдельный шаг HandleVerdict.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pribylovaa/go-shop-client/internal/models"
	"github.com/pribylovaa/go-shop-client/internal/notify"
	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
	"github.com/pribylovaa/go-shop-client/internal/storage"
)

// Ключи долговременного хранилища.
const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
)

// ErrNilStore - сессия создана без хранилища.
var ErrNilStore = errors.New("session store is nil")

// Request - описание одного исходящего вызова. Собирается заново на каждый вызов.
type Request struct {
	Method string
	Header http.Header
	Body   []byte
}

// Options - параметры сессии.
type Options struct {
	// EvictOnRejection удаляет оба токена при ответе "token_not_valid".
	// По умолчанию токены остаются, пользователь только уведомляется.
	EvictOnRejection bool
	// Notifier получает уведомление при отказе. nil - notify.Nop.
	Notifier notify.Notifier
	// Clock нужен для Status. nil - реальные часы.
	Clock clockwork.Clock
}

// Session - клиентская сессия поверх хранилища.
type Session struct {
	store    storage.Store
	evict    bool
	notifier notify.Notifier
	clock    clockwork.Clock
}

// New создаёт сессию поверх store.
func New(store storage.Store, opts Options) (*Session, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	s := &Session{
		store:    store,
		evict:    opts.EvictOnRejection,
		notifier: opts.Notifier,
		clock:    opts.Clock,
	}

	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}

	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}

	return s, nil
}

// StoreCredential сохраняет пару токенов, безусловно заменяя предыдущую.
// Структура токенов не проверяется.
func (s *Session) StoreCredential(ctx context.Context, access, refresh string) error {
	const op = "session.StoreCredential"

	if err := s.store.Set(ctx, KeyAccess, access); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Set(ctx, KeyRefresh, refresh); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Debug("credential_stored", slog.Int("access_len", len(access)))

	return nil
}

// Credential возвращает текущую пару. ok == false, если access-токена нет.
func (s *Session) Credential(ctx context.Context) (models.Credential, bool, error) {
	const op = "session.Credential"

	access, _, err := s.store.Get(ctx, KeyAccess)
	if err != nil {
		return models.Credential{}, false, fmt.Errorf("%s: %w", op, err)
	}

	refresh, _, err := s.store.Get(ctx, KeyRefresh)
	if err != nil {
		return models.Credential{}, false, fmt.Errorf("%s: %w", op, err)
	}

	c := models.Credential{Access: access, Refresh: refresh}
	return c, !c.Empty(), nil
}

// Clear удаляет оба токена (logout).
func (s *Session) Clear(ctx context.Context) error {
	const op = "session.Clear"

	if err := s.store.Delete(ctx, KeyAccess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Delete(ctx, KeyRefresh); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// BuildRequest собирает описание запроса. Пустой method означает GET.
// Content-Type всегда application/json; Authorization ставится только
// при непустом access-токене (из контекста, иначе из хранилища).
func (s *Session) BuildRequest(ctx context.Context, method string, body []byte) (*Request, error) {
	const op = "session.BuildRequest"

	if method == "" {
		method = http.MethodGet
	}

	h := make(http.Header, 2)
	h.Set("Content-Type", "application/json")

	token, ok := TokenFromContext(ctx)
	if !ok {
		stored, _, err := s.store.Get(ctx, KeyAccess)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		token = stored
	}

	if strings.TrimSpace(token) != "" {
		h.Set("Authorization", "Bearer "+token)
	}

	return &Request{Method: strings.ToUpper(method), Header: h, Body: body}, nil
}

// HandleVerdict выполняет побочные эффекты вердикта: уведомляет пользователя
// и, если включено EvictOnRejection, удаляет токены. Для Valid ничего не делает.
func (s *Session) HandleVerdict(ctx context.Context, v Verdict) error {
	const op = "session.HandleVerdict"

	if v != RejectedNeedsLogin {
		return nil
	}

	lg := logctx.From(ctx)
	lg.Warn("token_rejected", slog.Bool("evict", s.evict))

	var errs []error
	if err := s.notifier.Notify(ctx, notify.LoginAgain()); err != nil {
		lg.Error("notify_failed", slog.String("err", err.Error()))
		errs = append(errs, err)
	}

	if s.evict {
		if err := s.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type tokenCtxKey struct{}

// ContextWithToken переопределяет access-токен для запросов, собранных с этим контекстом.
// Используется шлюзом, чтобы пробросить собственный Bearer вызывающего.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext достаёт токен, положенный ContextWithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenCtxKey{}).(string)
	return v, ok && v != ""
}
