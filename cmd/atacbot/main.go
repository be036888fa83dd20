package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/atacradio/atacbot/internal/config"
	"github.com/atacradio/atacbot/internal/handlers"
	"github.com/atacradio/atacbot/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := repository.OpenDB(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := handlers.NewBot(cfg, repository.NewRepo(db))
	if err := bot.Run(ctx); err != nil {
		slog.Error("bot exited", "error", err)
		os.Exit(1)
	}
}
