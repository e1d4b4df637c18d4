package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/config"
	"github.com/bookworm-ai/bookworm/internal/repository"
	"github.com/bookworm-ai/bookworm/internal/seed"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	count      = flag.Int("count", 200, "Number of books to generate")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := seed.Run(repository.NewBookRepository(db), *count, logger); err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
}
