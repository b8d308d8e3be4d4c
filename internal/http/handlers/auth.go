package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/go-shop-client/internal/errors"
	"github.com/pribylovaa/go-shop-client/internal/models"
)

type loginIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyIn struct {
	Token string `json:"token"`
}

type verifyOut struct {
	Valid bool `json:"valid"`
}

// Login - POST /login: вход и сводка о сессии (без сырых токенов).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if _, err := h.Backend.Login(r.Context(), models.LoginRequest{Username: in.Username, Password: in.Password}); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.writeStatus(w, r)
}

// VerifyToken - POST /token/verify. Пустое тело проверяет сохранённый access-токен.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var in verifyIn
	if err := decodeStrict(r, &in); err != nil && !errors.Is(err, io.EOF) {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	ok, err := h.Backend.Verify(r.Context(), in.Token)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyOut{Valid: ok})
}

// RefreshToken - POST /token/refresh: новый access по сохранённому refresh.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Backend.Refresh(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.writeStatus(w, r)
}

// SessionStatus - GET /session.
func (h *Handlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r)
}

// Logout - DELETE /session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Backend.Logout(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Session.Status(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}
