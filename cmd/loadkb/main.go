// Command loadkb ingests knowledge-unit markdown files into the vector
// store: parse front-matter, generate embeddings, upsert by ku_id.
package main

import (
	"context"
	"flag"
	"log"

	"rag-mentor/internal/gigachat"
	"rag-mentor/internal/kb"
	"rag-mentor/internal/repository"
	"rag-mentor/internal/service"
	"rag-mentor/pkg/config"
	"rag-mentor/pkg/logger"
	"rag-mentor/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	sourceDir := flag.String("source", "./knowledge", "directory with knowledge unit .md files")
	cacheFile := flag.String("cache", ".loadkb_cache.json", "content-hash cache file ('' disables caching)")
	force := flag.Bool("force", false, "re-ingest files even when unchanged")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(&cfg.Database, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, cfg.RAG.EmbedDimension, appLogger)

	var embedder service.Embedder
	if cfg.RAG.DevEmbeddings {
		embedder = service.NewDeterministicEmbedder(cfg.RAG.EmbedDimension, appLogger)
	} else {
		gigaClient, err := gigachat.New(ctx, &cfg.GigaChat, cfg.RAG.EmbedDimension, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize GigaChat client", zap.Error(err))
		}
		defer gigaClient.Close()
		embedder = gigaClient
	}

	loader := kb.NewLoader(embedder, knowledgeRepo, appLogger)

	appLogger.Info("Starting knowledge ingestion", zap.String("source", *sourceDir))
	stats, err := loader.LoadDir(ctx, *sourceDir, *cacheFile, *force)
	if err != nil {
		appLogger.Fatal("Ingestion failed", zap.Error(err))
	}

	total, err := knowledgeRepo.Count(ctx)
	if err != nil {
		appLogger.Warn("Failed to count knowledge units", zap.Error(err))
	}

	appLogger.Info("Knowledge ingestion completed",
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int64("total_in_store", total),
	)
}
