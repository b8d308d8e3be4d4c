// errors стандартизирует ответы об ошибках локального шлюза.
// На вход он принимает ошибку клиента бэкенда (client.Err*, *client.StatusError,
// ошибки контекста), а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: sentinel-ошибки пакета client.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-shop-client/internal/client"
	"github.com/pribylovaa/go-shop-client/internal/notify"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrInvalidArgument - битый вход шлюза (JSON, параметры).
var ErrInvalidArgument = stderrors.New("invalid argument")

// APIError - единый формат для фронта.
// Code - короткий стабильный код для машиночитаемой обработки на FE.
// Message - безопасное человекочитаемое описание.
// RequestID - прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse - корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Таблица:
//   - client.ErrRejected -> 401 token_not_valid ("Please login again")
//   - client.ErrLoginFailed, client.ErrNotLoggedIn -> 401 unauthenticated
//   - ErrInvalidArgument, client.ErrEmptyQuery -> 400 invalid_argument
//   - *client.StatusError 4xx -> тот же статус, upstream_error
//   - context.DeadlineExceeded -> 504, context.Canceled -> 499
//   - client.ErrTransport -> 502 unavailable
//   - client.ErrMalformedResponse, *client.StatusError 5xx -> 502 bad_gateway
//   - err == nil и прочее -> 500/internal
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)
	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

func classify(err error) (int, string, string) {
	var se *client.StatusError

	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, client.ErrRejected):
		return http.StatusUnauthorized, "token_not_valid", notify.MsgLoginAgain
	case stderrors.Is(err, client.ErrLoginFailed):
		return http.StatusUnauthorized, "unauthenticated", "invalid credentials"
	case stderrors.Is(err, client.ErrNotLoggedIn):
		return http.StatusUnauthorized, "unauthenticated", "not logged in"
	case stderrors.Is(err, ErrInvalidArgument), stderrors.Is(err, client.ErrEmptyQuery):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, client.ErrTransport):
		return http.StatusBadGateway, "unavailable", "backend unavailable"
	case stderrors.Is(err, client.ErrMalformedResponse):
		return http.StatusBadGateway, "bad_gateway", "malformed backend response"
	case stderrors.As(err, &se):
		if se.Status >= http.StatusBadRequest && se.Status < http.StatusInternalServerError {
			return se.Status, "upstream_error", http.StatusText(se.Status)
		}
		return http.StatusBadGateway, "bad_gateway", "backend error"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

// WriteError - хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
