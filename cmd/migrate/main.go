package main

import (
	"os"

	"github.com/emilythestrangee/media-ranker/backend/internal/config"
	"github.com/emilythestrangee/media-ranker/backend/internal/database"
	"github.com/emilythestrangee/media-ranker/backend/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		logging.New("info", "").Fatal("usage: migrate [up|down]")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "").Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.Server.GinMode)

	command := os.Args[1]
	connect := database.Dial
	if command == "up" {
		connect = database.New
	}

	db, err := connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		// New has already migrated the schema.
		log.Info("migration complete")
	case "down":
		if err := database.Drop(db.GetDB()); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Info("tables dropped")
	default:
		log.Fatalf("unknown command %q: use up or down", command)
	}
}
