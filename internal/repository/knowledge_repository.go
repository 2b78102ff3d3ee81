package repository

import (
	"context"
	"fmt"

	"rag-mentor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const knowledgeColumns = "ku_id, title, content, level, user_level_fit, stage, channel, goal, style, riskiness"

// KnowledgeRepository stores and searches knowledge units in Postgres with
// pgvector. Every filter predicate is bound through squirrel with named
// expressions, so adding or reordering filters cannot shift parameter
// positions.
type KnowledgeRepository struct {
	db     *pgxpool.Pool
	dim    int
	logger *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, embedDimension int, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		dim:    embedDimension,
		logger: logger,
	}
}

// Upsert inserts a knowledge unit or, when ku_id already exists, overwrites
// its content, tags and embedding. Identity (ku_id) never changes.
func (r *KnowledgeRepository) Upsert(ctx context.Context, ku *models.KnowledgeUnit) error {
	if len(ku.Embedding) != r.dim {
		return fmt.Errorf("embedding dimension mismatch for %q: got %d, want %d", ku.KuID, len(ku.Embedding), r.dim)
	}

	query := squirrel.Insert("knowledge_units").
		Columns("ku_id", "title", "content", "level", "user_level_fit",
			"stage", "channel", "goal", "style", "riskiness", "embedding").
		Values(ku.KuID, ku.Title, ku.Content, ku.Level, ku.UserLevelFit,
			ku.Stage, ku.Channel, ku.Goal, ku.Style, ku.Riskiness,
			pgvector.NewVector(ku.Embedding)).
		Suffix(`ON CONFLICT (ku_id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			level = EXCLUDED.level,
			user_level_fit = EXCLUDED.user_level_fit,
			stage = EXCLUDED.stage,
			channel = EXCLUDED.channel,
			goal = EXCLUDED.goal,
			style = EXCLUDED.style,
			riskiness = EXCLUDED.riskiness,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SearchSimilar returns up to topK knowledge units satisfying the filter,
// ranked by cosine similarity to the query embedding (descending). Exactly
// equal distances are broken by ku_id ascending, so ordering is
// deterministic.
func (r *KnowledgeRepository) SearchSimilar(ctx context.Context, embedding []float32, filter models.Filter, topK int) ([]models.ScoredUnit, error) {
	if len(embedding) != r.dim {
		return nil, fmt.Errorf("query embedding dimension mismatch: got %d, want %d", len(embedding), r.dim)
	}

	vec := pgvector.NewVector(embedding)

	query := squirrel.Select(knowledgeColumns).
		Column(squirrel.Alias(squirrel.Expr("1 - (embedding <=> ?)", vec), "similarity")).
		From("knowledge_units").
		OrderByClause("embedding <=> ?", vec).
		OrderBy("ku_id ASC").
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.Level != "" {
		query = query.Where(squirrel.Expr("? = ANY(user_level_fit)", filter.Level))
	}
	if len(filter.Stage) > 0 {
		query = query.Where(squirrel.Expr("stage && ?", filter.Stage))
	}
	if len(filter.Channel) > 0 {
		query = query.Where(squirrel.Expr("channel && ?", filter.Channel))
	}
	if len(filter.Goal) > 0 {
		query = query.Where(squirrel.Expr("goal && ?", filter.Goal))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ScoredUnit
	for rows.Next() {
		var ku models.KnowledgeUnit
		var similarity float64
		if err := rows.Scan(
			&ku.KuID, &ku.Title, &ku.Content, &ku.Level, &ku.UserLevelFit,
			&ku.Stage, &ku.Channel, &ku.Goal, &ku.Style, &ku.Riskiness,
			&similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, models.ScoredUnit{Unit: &ku, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Knowledge search completed",
		zap.Int("results", len(results)),
		zap.Int("top_k", topK),
	)

	return results, nil
}

// Count returns the number of stored knowledge units.
func (r *KnowledgeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM knowledge_units").Scan(&count)
	return count, err
}
