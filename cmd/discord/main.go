package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"soulkit/internal/ai"
	"soulkit/internal/bot"
	"soulkit/internal/config"
	"soulkit/internal/logging"
	"soulkit/internal/memory"
	"soulkit/internal/session"
	"soulkit/internal/store"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is not set")
	}

	logger := logging.New(cfg.LogPath, cfg.Debug)

	genesis, err := config.LoadGenesis(cfg.GenesisPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("genesis load failed")
	}

	fs, err := store.Open(cfg.StatePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("state store open failed")
	}
	defer fs.Close()

	episodes, err := memory.Open(cfg.MemoryPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("episode store open failed")
	}
	defer episodes.Close()

	provider := ai.NewOpenAIProvider(cfg.AIBaseURL, cfg.AIModel, cfg.AIKey)

	manager := session.NewManager(session.Options{
		Store:          fs,
		Episodes:       episodes,
		Provider:       provider,
		Limiter:        ai.DefaultCallLimiter(),
		Pacer:          ai.NewPacer(0.5, 2),
		Genesis:        genesis,
		Logger:         logger,
		ReflectionIdle: cfg.ReflectionIdle,
	})
	defer manager.Close()

	if err := manager.Maintain(); err != nil {
		logger.Error().Err(err).Msg("episode maintenance failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx, cfg.DiscordToken, manager, logger)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("discord bot exited with error")
		}
		cancel()
	}

	logger.Info().Msg("discord bot exited cleanly")
}
