package middleware

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/go-shop-client/internal/session"
)

// AuthBearer переносит Bearer-токен вызывающего в контекст (session.ContextWithToken):
// запросы к бэкенду пойдут с ним вместо сохранённого. Без заголовка - сохранённый токен.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "

			auth := r.Header.Get("Authorization")
			if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
				if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
					r = r.WithContext(session.ContextWithToken(r.Context(), token))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
