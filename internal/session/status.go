package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Status - сводка о текущей сессии без сырых токенов.
type Status struct {
	LoggedIn   bool       `json:"logged_in"`
	HasRefresh bool       `json:"has_refresh"`
	Subject    string     `json:"subject,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Expired    bool       `json:"expired"`
}

// accessClaims - claims access-токена simplejwt.
type accessClaims struct {
	UserID any `json:"user_id"`
	jwt.RegisteredClaims
}

// Status читает claims access-токена без проверки подписи: у клиента нет ключа,
// а проверку делает бэкенд. Не-JWT токен даёт статус с пустыми claims.
func (s *Session) Status(ctx context.Context) (Status, error) {
	const op = "session.Status"

	cred, ok, err := s.Credential(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("%s: %w", op, err)
	}

	st := Status{LoggedIn: ok, HasRefresh: cred.Refresh != ""}
	if !ok {
		return st, nil
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser(jwt.WithJSONNumber()).ParseUnverified(cred.Access, &claims); err != nil {
		return st, nil
	}

	st.Subject = claims.Subject
	if claims.UserID != nil {
		st.UserID = fmt.Sprint(claims.UserID)
	}

	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		st.ExpiresAt = &exp
		st.Expired = !s.clock.Now().Before(exp)
	}

	return st, nil
}
