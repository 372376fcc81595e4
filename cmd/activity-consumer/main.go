// Command activity-consumer appends csvboard activity events from RabbitMQ
// to a log file.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/config"
	"github.com/iliyamo/csvboard/internal/logging"
	"github.com/iliyamo/csvboard/internal/queue"
)

func main() {
	cfg := config.LoadActivityConfig()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:     cfg.RabbitMQURL,
		Queue:   cfg.Queue,
		LogPath: cfg.LogPath,
		Log:     logger,
	}
	logger.Info("activity consumer started", zap.String("queue", c.Queue), zap.String("log", c.LogPath))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("activity consumer failed", zap.Error(err))
	}
	logger.Info("activity consumer stopped")
}
