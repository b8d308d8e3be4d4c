package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/pribylovaa/go-shop-client/internal/metrics"
	"github.com/pribylovaa/go-shop-client/internal/models"
	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
	"github.com/pribylovaa/go-shop-client/internal/pkg/redact"
	"github.com/pribylovaa/go-shop-client/internal/session"
)

// Login отправляет учётные данные в POST /token/ и сохраняет полученную пару.
// Если в ответе нет access или refresh, возвращает *LoginError (ErrLoginFailed)
// и ничего не сохраняет.
func (c *Client) Login(ctx context.Context, in models.LoginRequest) (models.TokenPair, error) {
	const op = "client.Login"

	lg := logctx.From(ctx).With(slog.String("username", redact.Username(in.Username)))

	ex, err := c.do(ctx, call{
		endpoint: EndpointLogin,
		method:   http.MethodPost,
		path:     "/token/",
		body:     in,
	})
	if err != nil {
		c.metrics.ObserveLogin(metrics.LoginError)
		return models.TokenPair{}, err
	}

	if !isJSON(ex.body) {
		c.metrics.ObserveLogin(metrics.LoginError)
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}

	pair := models.TokenPair{
		Access:  gjson.GetBytes(ex.body, "access").String(),
		Refresh: gjson.GetBytes(ex.body, "refresh").String(),
	}

	if ex.status >= http.StatusBadRequest || pair.Access == "" || pair.Refresh == "" {
		c.metrics.ObserveLogin(metrics.LoginFailed)
		detail := gjson.GetBytes(ex.body, "detail").String()
		lg.Info("login_failed", slog.Int("status", ex.status), slog.String("detail", detail))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, &LoginError{Status: ex.status, Detail: detail})
	}

	if err := c.sess.StoreCredential(ctx, pair.Access, pair.Refresh); err != nil {
		c.metrics.ObserveLogin(metrics.LoginError)
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	c.metrics.ObserveLogin(metrics.LoginOK)
	lg.Info("login_succeeded", slog.String("access", redact.Token(pair.Access)))

	return pair, nil
}

// Verify проверяет токен через POST /token/verify/. Пустой token - проверяется
// сохранённый access-токен. Отказ "token_not_valid" - это valid == false, не ошибка.
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	const op = "client.Verify"

	if token == "" {
		cred, ok, err := c.sess.Credential(ctx)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return false, fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
		}
		token = cred.Access
	}

	ex, err := c.do(ctx, call{
		endpoint: EndpointVerify,
		method:   http.MethodPost,
		path:     "/token/verify/",
		body:     models.VerifyRequest{Token: token},
	})
	if err != nil {
		return false, err
	}

	switch {
	case ex.status < http.StatusMultipleChoices:
		return true, nil
	case session.Classify(ex.body) == session.RejectedNeedsLogin:
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, statusError(EndpointVerify, ex))
	}
}

// Refresh обменивает сохранённый refresh-токен на новый access через POST /token/refresh/.
// Если бэкенд ротирует refresh, сохраняется и он.
func (c *Client) Refresh(ctx context.Context) (models.TokenPair, error) {
	const op = "client.Refresh"

	cred, _, err := c.sess.Credential(ctx)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if cred.Refresh == "" {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	}

	ex, err := c.do(ctx, call{
		endpoint: EndpointRefresh,
		method:   http.MethodPost,
		path:     "/token/refresh/",
		body:     models.RefreshRequest{Refresh: cred.Refresh},
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	// Отказ в refresh всегда про сохранённую пару, даже если в контексте чужой access.
	if err := c.verdict(ctx, op, ex.body, false); err != nil {
		return models.TokenPair{}, err
	}

	if ex.status >= http.StatusBadRequest {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, statusError(EndpointRefresh, ex))
	}

	if !isJSON(ex.body) {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}

	pair := models.TokenPair{
		Access:  gjson.GetBytes(ex.body, "access").String(),
		Refresh: gjson.GetBytes(ex.body, "refresh").String(),
	}
	if pair.Access == "" {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrMalformedResponse)
	}

	if pair.Refresh == "" {
		pair.Refresh = cred.Refresh
	}

	if err := c.sess.StoreCredential(ctx, pair.Access, pair.Refresh); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("token_refreshed", slog.String("access", redact.Token(pair.Access)))

	return pair, nil
}

// Logout удаляет сохранённую пару. У бэкенда нет эндпойнта отзыва.
func (c *Client) Logout(ctx context.Context) error {
	const op = "client.Logout"

	if err := c.sess.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsRejected - ошибка означает, что нужен повторный вход.
func IsRejected(err error) bool { return errors.Is(err, ErrRejected) }
