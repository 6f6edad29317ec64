package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/stuart-arnold/quickbooks-order-sync/internal/adapters/cli"
	"github.com/stuart-arnold/quickbooks-order-sync/internal/app"
	"github.com/stuart-arnold/quickbooks-order-sync/internal/core"
	"github.com/stuart-arnold/quickbooks-order-sync/internal/db"
)

func main() {
	_ = godotenv.Load()
	initLogger()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	cfg, err := core.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid engine configuration: %v", err)
	}

	svc := app.NewAppService(core.NewCatalogService(pool), core.NewEngine(cfg), slog.Default())

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <orders|show|allocate|run> [order-id]")
	}
	cli.Run(ctx, svc, os.Args[1:])
}

// initLogger routes structured logs to stderr so stdout stays clean for
// command output (allocate prints JSON).
func initLogger() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
