// A local REPL for talking to the companion without Discord. Reads lines
// from stdin, one turn per line; /reset wipes the agent, /quit exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"soulkit/internal/ai"
	"soulkit/internal/config"
	"soulkit/internal/logging"
	"soulkit/internal/memory"
	"soulkit/internal/session"
	"soulkit/internal/store"
)

const cliAgentID = "cli"

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
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

	manager := session.NewManager(session.Options{
		Store:          fs,
		Episodes:       episodes,
		Provider:       ai.NewOpenAIProvider(cfg.AIBaseURL, cfg.AIModel, cfg.AIKey),
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

	fmt.Printf("%s is listening. /reset starts over, /quit exits.\n", genesis.Name)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/reset":
			if err := manager.FactoryReset(cliAgentID); err != nil {
				fmt.Println("reset failed:", err)
				continue
			}
			fmt.Println("Everything starts over now.")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		reply, err := manager.ProcessTurn(ctx, cliAgentID, line)
		cancel()
		switch {
		case errors.Is(err, session.ErrRateLimited):
			fmt.Println("(she needs a moment, try again shortly)")
			continue
		case err != nil:
			fmt.Println("turn failed:", err)
			continue
		}
		fmt.Printf("%s: %s\n", genesis.Name, reply.Text)
	}
}
