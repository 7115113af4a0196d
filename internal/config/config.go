package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config holds runtime settings. Every field binds to an environment
// variable; only the AI endpoint is required to start.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	AIBaseURL string `env:"AI_BASE_URL,required"`
	AIModel   string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	AIKey     string `env:"AI_API_KEY"`

	DataDir     string `env:"DATA_DIR" envDefault:"./data"`
	StatePath   string `env:"STATE_PATH" envDefault:"./data/state.json"`
	MemoryPath  string `env:"MEMORY_PATH" envDefault:"./data/episodes.db"`
	GenesisPath string `env:"GENESIS_PATH" envDefault:"./persona.yaml"`

	LogPath string `env:"LOG_PATH" envDefault:"./data/soulkit.log"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`

	ReflectionIdle time.Duration `env:"REFLECTION_IDLE" envDefault:"30m"`
}

// New parses configuration from the environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
