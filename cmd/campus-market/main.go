package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/sethvargo/go-retry"

	"github.com/pribylovaa/go-campus-market/internal/client"
	"github.com/pribylovaa/go-campus-market/internal/config"
	"github.com/pribylovaa/go-campus-market/internal/market"
	"github.com/pribylovaa/go-campus-market/internal/tui"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

func main() {
	var configPath, logPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&logPath, "log", "campus-market.log", "path to log file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	// stdout занят интерфейсом, поэтому логи уходят в файл.
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "campus-market: open log file:", err)
		os.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	log := setupLogger(cfg.Env, logFile)
	slog.SetDefault(log)
	log.Info("starting campus-market",
		"env", cfg.Env,
		"base_url", cfg.Client.BaseURL,
		"schema", cfg.Client.Schema,
		"user_id", cfg.Client.UserID,
	)

	cl, err := client.New(client.Config{
		BaseURL:   cfg.Client.BaseURL,
		Schema:    cfg.Client.Schema,
		UserID:    cfg.Client.UserID,
		UserAgent: cfg.Client.UserAgent,
		Timeout:   cfg.Timeouts.Service,
		Logger:    log,
	})
	if err != nil {
		log.Error("client_init_failed", slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, "campus-market:", err)
		os.Exit(1)
	}

	svc := market.New(cl, cfg.Feed)

	// Бекенд (обычно dev-стаб) может подниматься позже клиента: ждём его
	// готовности с фибоначчиевым бэкоффом, не дольше минуты.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Minute)
	defer waitCancel()

	backoff := retry.WithMaxDuration(time.Minute, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(waitCtx, backoff, func(ctx context.Context) error {
		if err := svc.Ping(ctx); err != nil {
			log.Warn("backend_not_ready", slog.String("err", err.Error()))
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		log.Error("backend_unreachable", slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, "campus-market: backend is not reachable:", err)
		os.Exit(1)
	}

	log.Info("backend_ready")

	model := tui.NewModel(svc, cfg.Timeouts.Service)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Error("tui_failed", slog.String("err", err.Error()))
		fmt.Fprintln(os.Stderr, "campus-market:", err)
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		// Файл читают глазами, поэтому текстовый формат без цветовых кодов.
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}))
	}
}
