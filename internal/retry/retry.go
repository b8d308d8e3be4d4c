// retry - политика повторов на границе исходящего запроса.
// По умолчанию (MaxAttempts == 1) повторов нет.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

type Action int

const (
	Stop  Action = iota // постоянная ошибка, сразу выходим
	Retry               // временная ошибка, ждём backoff
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration // 0 - без ограничения
	Clock          clockwork.Clock
	OnRetry        func(attempt int, err error, backoff time.Duration)
}

// None - одна попытка, без повторов.
func None() Policy { return Policy{MaxAttempts: 1} }

type Classify func(err error) Action
type Operation[T any] func(ctx context.Context) (T, error)

// Do выполняет op до MaxAttempts раз. Ошибка последней попытки (или Stop)
// возвращается как есть, чтобы вызывающий мог сравнивать её через errors.Is/As.
func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	backoff := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		if attempt >= attempts || classify == nil || classify(err) == Stop {
			return val, err
		}

		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-clock.After(backoff):
			backoff = double(backoff)
		case <-ctx.Done():
			var zero T
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// double удваивает d с насыщением на максимальной длительности.
func double(d time.Duration) time.Duration {
	if d > math.MaxInt64/2 {
		return math.MaxInt64
	}

	return d * 2
}
