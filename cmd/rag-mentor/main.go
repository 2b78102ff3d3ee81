package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rag-mentor/internal/api"
	"rag-mentor/internal/api/handlers"
	"rag-mentor/internal/gigachat"
	"rag-mentor/internal/repository"
	"rag-mentor/internal/service"
	"rag-mentor/pkg/config"
	"rag-mentor/pkg/logger"
	"rag-mentor/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Mentor RAG service")

	ctx := context.Background()

	// Run schema migrations before opening the pool
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

	// Repositories
	knowledgeRepo := repository.NewKnowledgeRepository(db, cfg.RAG.EmbedDimension, appLogger)
	storyRepo := repository.NewStoryRepository(db, appLogger)

	// Capability providers. Dev embeddings are an explicit opt-in, never a
	// fallback for a missing credential.
	var embedder service.Embedder
	var generator service.Generator
	generatorConfigured := cfg.GigaChat.APIKey != ""

	gigaClient, err := gigachat.New(ctx, &cfg.GigaChat, cfg.RAG.EmbedDimension, appLogger)
	if err != nil {
		if !cfg.RAG.DevEmbeddings {
			appLogger.Fatal("Failed to initialize GigaChat client", zap.Error(err))
		}
		appLogger.Warn("GigaChat unavailable, dev mode continues without generation", zap.Error(err))
		generatorConfigured = false
	} else {
		defer gigaClient.Close()
		embedder = gigaClient
		generator = gigaClient
	}
	if cfg.RAG.DevEmbeddings {
		embedder = service.NewDeterministicEmbedder(cfg.RAG.EmbedDimension, appLogger)
	}
	if generator == nil {
		generator = unavailableGenerator{}
	}

	// Services
	retrieval := service.NewRetrievalService(embedder, knowledgeRepo, cfg.RAG.TopK, appLogger)
	assembler := service.NewPromptAssembler()
	chatService := service.NewChatService(retrieval, assembler, generator, cfg.RAG.ProviderTimeout, appLogger)
	storyService := service.NewStoryService(storyRepo, appLogger)

	// Handlers
	chatHandler := handlers.NewChatHandler(chatService, appLogger)
	storyHandler := handlers.NewStoryHandler(storyService, appLogger)
	healthHandler := handlers.NewHealthHandler(generatorConfigured)

	app := api.SetupRouter(chatHandler, storyHandler, healthHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// unavailableGenerator stands in when dev mode runs without a GigaChat
// credential. Every call fails loudly instead of fabricating an answer.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("generator is not configured: set GIGACHAT_API_KEY")
}
