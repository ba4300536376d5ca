package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwise1/upzunction/config"
	deps "github.com/bwise1/upzunction/internal/debs"
	api "github.com/bwise1/upzunction/internal/http/rest"
	"github.com/bwise1/upzunction/internal/logger"
)

const (
	allowConnectionsAfterShutdown = 1 * time.Second
)

func main() {
	cfg := config.New()

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Panicln("failed to create logger", "error", err)
	}
	defer lg.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := deps.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to wire dependencies", "error", err)
	}

	a := &api.API{
		Config: cfg,
		Deps:   d,
		Logger: lg,
	}

	go d.Hub.Run(ctx)
	go d.Sweeper.Run(ctx)
	go func() {
		lg.Info("server running", "port", cfg.Port)
		if err := a.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server stopped", "error", err)
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-stopChan

	lg.Info("request to shutdown server", "grace", allowConnectionsAfterShutdown)
	waitTimer := time.NewTimer(allowConnectionsAfterShutdown)
	<-waitTimer.C

	lg.Info("shutting down server")
	if err := a.Shutdown(); err != nil {
		lg.Error("server shutdown failed", "error", err)
	}

	cancel()
	d.Close()
	lg.Info("connections closed")
}
