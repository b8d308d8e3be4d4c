package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-shop-client/internal/http/handlers"
	"github.com/pribylovaa/go-shop-client/internal/http/middleware"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой - роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(),          // до логирования
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.AuthBearer(),         // Bearer вызывающего вместо сохранённого токена
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes - единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// session
	r.Post("/login", h.Login)
	r.Get("/session", h.SessionStatus)
	r.Delete("/session", h.Logout)
	r.Post("/token/verify", h.VerifyToken)
	r.Post("/token/refresh", h.RefreshToken)

	// shop
	r.Get("/search", h.Search)
	r.Get("/products", h.Products)
}
