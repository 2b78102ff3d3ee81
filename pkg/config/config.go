package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GigaChat GigaChatConfig
	RAG      RAGConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	EmbeddingModel     string
	Temperature        float64
	InsecureSkipVerify bool
}

type RAGConfig struct {
	TopK           int
	EmbedDimension int
	// ProviderTimeout bounds each outbound embed/generate call and the
	// similarity query.
	ProviderTimeout time.Duration
	// DevEmbeddings switches the service to deterministic hash-seeded
	// embeddings. Never the production default; see cmd/rag-mentor.
	DevEmbeddings bool
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine: environment variables are used directly
	// (Docker/K8s deployments).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "60"))
	ragTopK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "8"))
	embedDim, _ := strconv.Atoi(getEnv("EMBED_DIMENSION", "1024"))
	providerTimeout, _ := strconv.Atoi(getEnv("RAG_PROVIDER_TIMEOUT", "30"))
	temperature, _ := strconv.ParseFloat(getEnv("GIGACHAT_TEMPERATURE", "0.7"), 64)

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5433"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mentor_vector_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Migrate:  getEnv("DB_MIGRATE", "true") == "true",
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			EmbeddingModel:     getEnv("GIGACHAT_EMBEDDING_MODEL", "Embeddings"),
			Temperature:        temperature,
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
		},
		RAG: RAGConfig{
			TopK:            ragTopK,
			EmbedDimension:  embedDim,
			ProviderTimeout: time.Duration(providerTimeout) * time.Second,
			DevEmbeddings:   getEnv("RAG_DEV_EMBEDDINGS", "false") == "true",
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.RAG.TopK <= 0 {
		return nil, fmt.Errorf("RAG_TOP_K must be positive, got %d", cfg.RAG.TopK)
	}
	if cfg.RAG.EmbedDimension <= 0 {
		return nil, fmt.Errorf("EMBED_DIMENSION must be positive, got %d", cfg.RAG.EmbedDimension)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
