package kb

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rag-mentor/internal/models"
	"rag-mentor/internal/service"

	"go.uber.org/zap"
)

// Upserter is the piece of the knowledge store the loader needs.
type Upserter interface {
	Upsert(ctx context.Context, ku *models.KnowledgeUnit) error
}

// Stats summarizes one ingestion run.
type Stats struct {
	Loaded  int
	Skipped int
	Failed  int
}

// processedFile records one ingested file in the cache.
type processedFile struct {
	FileHash    string    `json:"file_hash"`
	ProcessedAt time.Time `json:"processed_at"`
}

type cacheData struct {
	ProcessedFiles map[string]processedFile `json:"processed_files"`
}

// Loader ingests knowledge-unit markdown files: parse, embed, upsert.
// A content-hash cache skips files unchanged since the previous run.
type Loader struct {
	embedder service.Embedder
	store    Upserter
	logger   *zap.Logger
}

func NewLoader(embedder service.Embedder, store Upserter, logger *zap.Logger) *Loader {
	return &Loader{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// LoadDir ingests every *.md file under sourceDir. cacheFile may be empty to
// disable caching; force re-ingests regardless of the cache. Per-file
// failures are logged and counted, not fatal: one bad document must not
// abort the whole run.
func (l *Loader) LoadDir(ctx context.Context, sourceDir, cacheFile string, force bool) (Stats, error) {
	var stats Stats

	cache, err := loadCache(cacheFile)
	if err != nil {
		return stats, err
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return stats, fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(sourceDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Error("Failed to read file", zap.String("file", path), zap.Error(err))
			stats.Failed++
			continue
		}

		hash := fmt.Sprintf("%x", md5.Sum(data))
		if !force {
			if prev, ok := cache.ProcessedFiles[path]; ok && prev.FileHash == hash {
				l.logger.Debug("File unchanged, skipping", zap.String("file", path))
				stats.Skipped++
				continue
			}
		}

		stem := strings.TrimSuffix(entry.Name(), ".md")
		ku, err := Parse(stem, data)
		if err != nil {
			l.logger.Error("Failed to parse knowledge unit", zap.String("file", path), zap.Error(err))
			stats.Failed++
			continue
		}

		embedding, err := l.embedder.Embed(ctx, EmbeddingText(ku))
		if err != nil {
			l.logger.Error("Failed to embed knowledge unit",
				zap.String("ku_id", ku.KuID), zap.Error(err))
			stats.Failed++
			continue
		}
		ku.Embedding = embedding

		if err := l.store.Upsert(ctx, ku); err != nil {
			l.logger.Error("Failed to upsert knowledge unit",
				zap.String("ku_id", ku.KuID), zap.Error(err))
			stats.Failed++
			continue
		}

		cache.ProcessedFiles[path] = processedFile{FileHash: hash, ProcessedAt: time.Now()}
		l.logger.Info("Knowledge unit loaded", zap.String("ku_id", ku.KuID))
		stats.Loaded++
	}

	if err := saveCache(cacheFile, cache); err != nil {
		l.logger.Warn("Failed to save ingestion cache", zap.Error(err))
	}

	return stats, nil
}

func loadCache(cacheFile string) (*cacheData, error) {
	cache := &cacheData{ProcessedFiles: make(map[string]processedFile)}
	if cacheFile == "" {
		return cache, nil
	}

	data, err := os.ReadFile(cacheFile)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.ProcessedFiles == nil {
		cache.ProcessedFiles = make(map[string]processedFile)
	}
	return cache, nil
}

func saveCache(cacheFile string, cache *cacheData) error {
	if cacheFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	return os.WriteFile(cacheFile, data, 0644)
}
