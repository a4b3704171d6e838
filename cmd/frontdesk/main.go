package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vetdesk/frontdesk-backend/internal/app"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Fatal("loading config", "error", err)
	}

	fd, err := app.NewFrontDesk(log, cfg)
	if err != nil {
		log.Fatal("bootstrapping front desk", "error", err)
	}
	defer fd.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("front desk starting", "addr", cfg.FrontDeskAddr)
	if err := fd.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("front desk stopped", "error", err)
		os.Exit(1)
	}
	log.Info("front desk stopped")
}
