package main

import (
	"context"
	"errors"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"

	nftx "github.com/Ashenafi-pixel/nft-experience-server"
	"github.com/Ashenafi-pixel/nft-experience-server/config"
	"github.com/Ashenafi-pixel/nft-experience-server/crate"
	"github.com/Ashenafi-pixel/nft-experience-server/server"
)

func main() {
	// Load .env so DATABASE_URL is set: cwd .env, or project root .env/.env.local
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../.env.local")
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelInfo, true)))

	cfg, err := config.Load()
	if err != nil {
		log.Crit("Invalid configuration", "err", err)
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, cfg.Level(), true)))

	catalog, err := loadCatalog(context.Background(), cfg)
	if err != nil {
		log.Crit("Failed to load crate catalog", "err", err)
	}
	srv, err := server.New(cfg, catalog)
	if err != nil {
		log.Crit("Failed to build server", "err", err)
	}
	if err := srv.Run(); err != nil {
		log.Crit("Server stopped", "err", err)
	}
}

// loadCatalog layers crate sources: the YAML file, then crates registered
// through the importer, then Postgres. Later sources win on id clashes.
func loadCatalog(ctx context.Context, cfg *config.Config) (*crate.Catalog, error) {
	var fromFile []crate.Config
	if cfg.CratesFile != "" {
		configs, err := crate.LoadYAML(cfg.CratesFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn("Crates file not found", "path", cfg.CratesFile)
		case err != nil:
			return nil, err
		default:
			fromFile = configs
			log.Info("Loaded crates file", "path", cfg.CratesFile, "crates", len(configs))
		}
	}

	fromStore := crate.NewStore(cfg.DataDir).List()

	var fromDB []crate.Config
	db, err := nftx.GetDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if db != nil {
		fromDB, err = crate.LoadFromDB(ctx, db)
		if err != nil {
			return nil, err
		}
		log.Info("Loaded crates from database", "crates", len(fromDB))
	}

	catalog, err := crate.NewCatalog(crate.MergeConfigs(fromFile, fromStore, fromDB))
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		log.Warn("Crate catalog is empty; crate endpoints will return unknown_crate")
	}
	return catalog, nil
}
