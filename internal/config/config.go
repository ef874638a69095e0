// /internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds process-level settings. Everything comes from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	StoragePath   string `env:"STORAGE_PATH,required,notEmpty"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	RegisterSlash bool   `env:"REGISTER_SLASH" envDefault:"true"`

	DefaultVolume int    `env:"DEFAULT_VOLUME" envDefault:"50"`
	YouTubeProxy  string `env:"YOUTUBE_PROXY"`
	FFmpegPath    string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	YTDLPPath     string `env:"YTDLP_PATH" envDefault:"yt-dlp"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DefaultVolume < 0 || cfg.DefaultVolume > 100 {
		return nil, fmt.Errorf("DEFAULT_VOLUME must be within 0..100, got %d", cfg.DefaultVolume)
	}
	return &cfg, nil
}
