// notify - канал уведомления пользователя, отделённый от классификации ответа.
//
// Сессия только решает, что токен отвергнут; как об этом сказать
// (stderr в CLI, лог в шлюзе, что-то ещё) решает вызывающая сторона.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	logctx "github.com/pribylovaa/go-shop-client/internal/pkg/log"
)

// MsgLoginAgain - текст уведомления при отказе бэкенда принять токен.
const MsgLoginAgain = "Please login again"

// Kind - вид уведомления.
type Kind string

const (
	KindLoginRequired Kind = "login_required"
)

// Notice - одно уведомление.
type Notice struct {
	Kind    Kind
	Message string
}

// LoginAgain - уведомление "токен отвергнут, войдите заново".
func LoginAgain() Notice {
	return Notice{Kind: KindLoginRequired, Message: MsgLoginAgain}
}

// Notifier доставляет уведомление пользователю.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Func - адаптер функции к Notifier.
type Func func(ctx context.Context, n Notice) error

func (f Func) Notify(ctx context.Context, n Notice) error { return f(ctx, n) }

// Nop ничего не делает.
type Nop struct{}

func (Nop) Notify(context.Context, Notice) error { return nil }

// Writer печатает сообщение отдельной строкой. Безопасен для конкурентного использования.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (n *Writer) Notify(_ context.Context, notice Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintln(n.w, notice.Message)
	return err
}

// Log пишет уведомление предупреждением в логгер из контекста (или в base).
type Log struct {
	base *slog.Logger
}

func NewLog(base *slog.Logger) *Log { return &Log{base: base} }

func (n *Log) Notify(ctx context.Context, notice Notice) error {
	l, ok := logctx.Lookup(ctx)
	if !ok {
		l = n.base
	}
	if l == nil {
		l = slog.Default()
	}

	l.LogAttrs(ctx, slog.LevelWarn, "user_notice",
		slog.String("kind", string(notice.Kind)),
		slog.String("message", notice.Message),
	)

	return nil
}
