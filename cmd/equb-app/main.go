package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"equb-app-go/internal/app"
	"equb-app-go/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()
	log.Info("app: starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(log)
	if err != nil {
		log.Critical("app: init failed", "err", err)
		os.Exit(1)
	}

	exitCode := 0
	if err := application.Run(ctx); err != nil {
		log.Critical("app: run failed", "err", err)
		exitCode = 1
	} else {
		log.Info("app: shutdown signal received")
	}

	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		exitCode = 1
	}

	if exitCode == 0 {
		log.Info("app: stopped")
		return
	}

	os.Exit(exitCode)
}
