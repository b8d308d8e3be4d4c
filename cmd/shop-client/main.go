package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/pribylovaa/go-shop-client/internal/client"
	"github.com/pribylovaa/go-shop-client/internal/config"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run разбирает аргументы, собирает зависимости и выполняет команду.
// Возвращает код выхода процесса.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("shop-client"),
		kong.Description("Session client for the shop REST backend."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	serving := commandName(kctx) == "serve"

	log := setupLogger(cfg.Env, stderr, serving, cli.Debug)
	slog.SetDefault(log)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	a, err := newApp(rootCtx, cfg, log, appIO{stdout: stdout, stderr: stderr, serving: serving})
	if err != nil {
		log.Error("app_init_failed", slog.String("err", err.Error()))
		return 1
	}

	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn("app_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	if err := kctx.Run(a); err != nil {
		// Об отказе в токене пользователь уже уведомлён нотификатором.
		if !client.IsRejected(err) {
			log.Error("command_failed",
				slog.String("command", commandName(kctx)),
				slog.String("err", err.Error()),
			)
		}

		return 1
	}

	return 0
}

// commandName - первое слово выбранной команды ("search <query>" -> "search").
func commandName(kctx *kong.Context) string {
	fields := strings.Fields(kctx.Command())
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// setupLogger пишет в stderr: stdout занят выводом команд.
// Разовые команды по умолчанию молчат ниже Warn, --debug включает подробный вывод.
func setupLogger(env string, w io.Writer, serving, debug bool) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	if !serving && !debug {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}

	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, opts))
	case envDev, envProd:
		return slog.New(slog.NewJSONHandler(w, opts))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}
