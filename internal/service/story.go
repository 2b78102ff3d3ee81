package service

import (
	"context"

	"rag-mentor/internal/models"

	"go.uber.org/zap"
)

// StoryWriter persists a student story. Implemented by
// repository.StoryRepository and the in-memory store.
type StoryWriter interface {
	Create(ctx context.Context, story *models.StudentStory) error
}

// StoryService accepts outcome stories. Persistence is best-effort: a store
// failure is logged and swallowed, since losing an anecdote never affects
// retrieval correctness. Validation failures still surface so the caller
// can fix the request.
type StoryService struct {
	writer StoryWriter
	logger *zap.Logger
}

func NewStoryService(writer StoryWriter, logger *zap.Logger) *StoryService {
	return &StoryService{
		writer: writer,
		logger: logger,
	}
}

func (s *StoryService) Submit(ctx context.Context, story *models.StudentStory) error {
	if story.Text == "" {
		return &ValidationError{Msg: "story text is empty"}
	}
	if !models.ValidOutcome(string(story.Outcome)) {
		return &ValidationError{Msg: "unknown outcome: " + string(story.Outcome)}
	}

	story.Text = sanitizeUTF8(story.Text)

	if err := s.writer.Create(ctx, story); err != nil {
		s.logger.Warn("Failed to persist student story, dropping it",
			zap.Error(err),
			zap.String("outcome", string(story.Outcome)),
		)
		return nil
	}

	s.logger.Info("Student story saved", zap.String("outcome", string(story.Outcome)))
	return nil
}
