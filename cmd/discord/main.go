// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"tunebot/internal/config"
	"tunebot/internal/discord"
	"tunebot/internal/logger"
	"tunebot/internal/storage"
	"tunebot/pkg/jobmgr"
)

const (
	cooldownSweepInterval = 10 * time.Minute
	cooldownIdle          = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	_, logCloser := logger.Setup(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	log.Info().Msg("Starting music bot")

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.StoragePath).Msg("Failed to open storage")
		os.Exit(1)
	}

	bot, err := discord.NewBot(cfg, store)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize bot")
		_ = store.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := jobmgr.NewManager(ctx, jobmgr.LogReporter(logger.Component("jobs")))
	_ = jobs.Start("discord", bot.Run)
	_ = jobs.Start("cooldowns", func(ctx context.Context) error {
		return bot.Cooldowns().RunCleaner(ctx, cooldownSweepInterval, cooldownIdle)
	})

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-jobs.Errors():
		log.Error().Err(err).Msg("Background job failed, shutting down")
		exitCode = 1
	}

	jobs.StopAll()
	jobs.Wait()

	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to flush storage")
		exitCode = 1
	}

	log.Info().Msg("Bot exited")
	if exitCode != 0 {
		logCloser.Close()
		os.Exit(exitCode)
	}
}
