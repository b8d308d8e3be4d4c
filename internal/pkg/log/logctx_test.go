package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому намеренно НЕ используют t.Parallel().

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrom_ReturnsDefault_WhenNoLoggerInContext(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoAndFrom_RoundTrip(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
}

func TestFrom_ReturnsDefault_WhenStoredValueIsWrongTypeOrNil(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	def := newSilent()
	slog.SetDefault(def)

	ctxWrong := context.WithValue(context.Background(), ctxKey{}, "not-a-logger")
	require.Equal(t, def, From(ctxWrong))

	var nilLogger *slog.Logger
	ctxNil := context.WithValue(context.Background(), ctxKey{}, nilLogger)
	require.Equal(t, def, From(ctxNil))
}

// With добавляет атрибуты, и они попадают в каждую запись дочернего логгера.
func TestWith_AddsAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, l := With(Into(context.Background(), base), slog.String("endpoint", "/products/"))
	l.Info("probe")
	From(ctx).Info("probe2")

	out := buf.String()
	require.Contains(t, out, "endpoint=/products/")
	require.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("endpoint=/products/")))
}

func TestLookup(t *testing.T) {
	_, ok := Lookup(context.Background())
	require.False(t, ok)

	l := newSilent()
	got, ok := Lookup(Into(context.Background(), l))
	require.True(t, ok)
	require.Same(t, l, got)

	_, ok = Lookup(Into(context.Background(), nil))
	require.False(t, ok)
}
