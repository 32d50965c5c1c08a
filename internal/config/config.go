package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	APIBaseURL    string
	CurrentSeason int
	TierTablePath string
	APITimeout    time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	season, err := strconv.Atoi(getEnv("CURRENT_SEASON", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid CURRENT_SEASON: %w", err)
	}
	if season < 0 {
		return nil, fmt.Errorf("CURRENT_SEASON must not be negative, got %d", season)
	}

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("API_TIMEOUT must be positive, got %s", timeout)
	}

	cfg := &Config{
		APIBaseURL:    strings.TrimRight(getEnv("RANKED_API_URL", "https://api.mcsrranked.com"), "/"),
		CurrentSeason: season,
		TierTablePath: getEnv("TIER_TABLE_PATH", ""),
		APITimeout:    timeout,
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("RANKED_API_URL is required")
	}

	logger.Debug().
		Str("api_base_url", cfg.APIBaseURL).
		Int("current_season", cfg.CurrentSeason).
		Str("tier_table_path", cfg.TierTablePath).
		Dur("api_timeout", cfg.APITimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
