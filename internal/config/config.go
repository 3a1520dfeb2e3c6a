package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken      string `env:"DISCORD_TOKEN,required,notEmpty"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS" envDefault:"google_app_credentials.json"`
	StoragePath       string `env:"STORAGE_PATH" envDefault:"parrotbot.json"`
	HealthAddr        string `env:"HEALTH_ADDR" envDefault:":8787"`
	CommandPrefix     string `env:"COMMAND_PREFIX" envDefault:"!"`
}

// New loads configuration from a .env file (if present) and the process
// environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
