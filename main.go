package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"perifuse/adapters/api"
	"perifuse/adapters/postgres"
	"perifuse/app"
	"perifuse/internal"
	"perifuse/internal/config"
)

func main() {
	// Load .env file if present (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	var repo *postgres.TraitRepository
	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to trait store: %v", err)
		}
		defer db.Close()

		repo = postgres.NewTraitRepository(db)
		if err := repo.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate trait store: %v", err)
		}
		logger.Info("trait store connected")
	}

	service := app.NewExtractService(repo, logger)
	server := api.NewServer(service, logger)
	if err := server.ListenAndServe(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
