// Входные/выходные модели REST-бэкенда (simplejwt + search/products).
package models

// Credential - пара bearer-токенов текущей сессии.
// Access обязателен для авторизации запросов, Refresh хранится для /token/refresh/.
type Credential struct {
	Access  string
	Refresh string
}

// Empty сообщает, что access-токена нет.
func (c Credential) Empty() bool { return c.Access == "" }

// LoginRequest - тело POST /token/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair - ответ POST /token/ и /token/refresh/.
// При /token/refresh/ refresh приходит только если бэкенд ротирует токены.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Credential переводит ответ бэкенда в доменную пару.
func (p TokenPair) Credential() Credential {
	return Credential{Access: p.Access, Refresh: p.Refresh}
}

// VerifyRequest - тело POST /token/verify/.
type VerifyRequest struct {
	Token string `json:"token"`
}

// RefreshRequest - тело POST /token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// ErrorBody - типовое тело ошибки DRF/simplejwt.
//
//	{"detail": "Given token not valid for any token type", "code": "token_not_valid"}
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}
