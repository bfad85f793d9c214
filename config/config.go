package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

type Config struct {
	// Port prefers PORT (Render, Fly.io, Railway, etc.) then NFTX_PORT.
	Port          int    `env:"-"`
	PlatformPort  int    `env:"PORT"`
	ServicePort   int    `env:"NFTX_PORT" envDefault:"8081"`
	DataDir       string `env:"NFTX_DATA_DIR" envDefault:"data"`
	CratesFile    string `env:"NFTX_CRATES_FILE" envDefault:"crates.yaml"`
	MetadataURL   string `env:"NFTX_METADATA_URL" envDefault:"http://localhost:3000"`
	AssetBaseURL  string `env:"NFTX_ASSET_BASE_URL"`
	DatabaseURL   string `env:"DATABASE_URL"`
	CrateContract string `env:"NFTX_CRATE_CONTRACT"`
	LogLevel      string `env:"NFTX_LOG_LEVEL" envDefault:"info"`
}

// Load reads the service configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Port = cfg.ServicePort
	if cfg.PlatformPort > 0 {
		cfg.Port = cfg.PlatformPort
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	cfg.CrateContract = strings.TrimSpace(cfg.CrateContract)
	if cfg.CrateContract != "" && !common.IsHexAddress(cfg.CrateContract) {
		return nil, fmt.Errorf("NFTX_CRATE_CONTRACT: invalid address %q", cfg.CrateContract)
	}
	cfg.AssetBaseURL = strings.TrimRight(cfg.AssetBaseURL, "/")
	return &cfg, nil
}

// Level maps LogLevel onto a logger level. Unknown names are info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	}
	return log.LevelInfo
}
