package repository

import (
	"context"
	"time"

	"rag-mentor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StoryRepository persists student outcome stories. Append-only: stories are
// never read back by the retrieval path.
type StoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStoryRepository(db *pgxpool.Pool, logger *zap.Logger) *StoryRepository {
	return &StoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *StoryRepository) Create(ctx context.Context, story *models.StudentStory) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	if story.Metadata == "" {
		story.Metadata = "{}"
	}

	query := squirrel.Insert("student_stories").
		Columns("id", "telegram_user_id", "level", "stage", "channel", "goal",
			"text", "outcome", "used_ku_ids", "metadata", "created_at").
		Values(story.ID, story.TelegramUserID, story.Level, story.Stage,
			story.Channel, story.Goal, story.Text, story.Outcome,
			story.UsedKuIDs, story.Metadata, story.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
