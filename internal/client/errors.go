package client

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport - бэкенд недоступен (сеть, DNS, обрыв соединения).
	// Шлюз: 502 unavailable.
	ErrTransport = errors.New("backend unreachable")

	// ErrRejected - бэкенд ответил "token_not_valid"; нужен повторный вход.
	// Шлюз: 401 token_not_valid.
	ErrRejected = errors.New("token rejected, please login again")

	// ErrLoginFailed - в ответе /token/ нет пары токенов (неверный логин/пароль и т.п.).
	// Шлюз: 401 unauthenticated.
	ErrLoginFailed = errors.New("login failed")

	// ErrNotLoggedIn - для операции нужен сохранённый токен, а его нет.
	// Шлюз: 401 unauthenticated.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrMalformedResponse - пустое тело или не JSON там, где ждём JSON.
	// Шлюз: 502 bad_gateway.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrEmptyQuery - поиск без параметров (бэкенд ответит 400).
	// Шлюз: 400 invalid_argument.
	ErrEmptyQuery = errors.New("empty search query")
)

// StatusError - неуспешный HTTP-статус бэкенда, не являющийся отказом токена.
type StatusError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: backend status %d: %s", e.Endpoint, e.Status, e.Detail)
	}

	return fmt.Sprintf("%s: backend status %d", e.Endpoint, e.Status)
}

// Temporary - 5xx имеет смысл повторить.
func (e *StatusError) Temporary() bool { return e.Status >= 500 }

// LoginError - отказ во входе с пояснением бэкенда.
type LoginError struct {
	Status int
	Detail string
}

func (e *LoginError) Error() string {
	if e.Detail != "" {
		return "login failed: " + e.Detail
	}

	return "login failed"
}

func (e *LoginError) Unwrap() error { return ErrLoginFailed }
