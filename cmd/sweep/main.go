// Command sweep deactivates expired listings once and exits.
// It only needs Postgres, so it can run from cron on any host with a DSN.
package main

import (
	"context"
	"log"
	"time"

	"github.com/bwise1/upzunction/config"
	deps "github.com/bwise1/upzunction/internal/debs"
	"github.com/bwise1/upzunction/internal/logger"
)

func main() {
	cfg := config.New()

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Panicln("failed to create logger", "error", err)
	}
	defer lg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := deps.OpenDatabase(ctx, cfg)
	if err != nil {
		lg.Fatal("failed to open database", "error", err)
	}
	defer database.Close()

	n, err := deps.NewListingService(database, cfg, lg, nil).SweepExpired(ctx)
	if err != nil {
		lg.Error("sweep failed", "error", err)
		return
	}
	lg.Info("deactivated expired listings", "count", n)
}
