// Command dhozzi-gateway serves the Dhozzi HTTP and websocket API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dhozzi-app/dhozzi/internal/dotenv"
	"github.com/dhozzi-app/dhozzi/pkg/auth"
	"github.com/dhozzi-app/dhozzi/pkg/core/gen"
	"github.com/dhozzi-app/dhozzi/pkg/core/live"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/config"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/server"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		st = pg
	} else {
		logger.Warn("no database configured, accounts and chats are held in memory")
		st = store.NewMemory(logger)
	}
	defer st.Close()

	genClient, err := gen.NewClient(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	dialer, err := live.NewGenAIDialer(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("live dialer: %w", err)
	}

	authSvc := auth.NewService(st, logger, nil)
	return server.New(cfg, logger, st, authSvc, genClient, dialer).Run(ctx)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := dotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "dhozzi-gateway: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		fmt.Fprintf(os.Stderr, "dhozzi-gateway: %v\n", err)
		os.Exit(1)
	}
}
