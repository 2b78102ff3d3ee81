package service

import (
	"context"
	"errors"
	"testing"

	"rag-mentor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStoryWriter struct {
	err    error
	stored []*models.StudentStory
}

func (f *fakeStoryWriter) Create(ctx context.Context, story *models.StudentStory) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, story)
	return nil
}

func TestStorySubmit(t *testing.T) {
	t.Parallel()

	writer := &fakeStoryWriter{}
	svc := NewStoryService(writer, zap.NewNop())

	story := &models.StudentStory{
		Level:   "новичок",
		Stage:   []string{"Свидание"},
		Text:    "всё прошло отлично",
		Outcome: models.OutcomeSuccess,
	}
	require.NoError(t, svc.Submit(context.Background(), story))
	require.Len(t, writer.stored, 1)
	assert.Equal(t, "всё прошло отлично", writer.stored[0].Text)
	assert.Equal(t, models.OutcomeSuccess, writer.stored[0].Outcome)
}

func TestStorySubmitValidation(t *testing.T) {
	t.Parallel()

	svc := NewStoryService(&fakeStoryWriter{}, zap.NewNop())

	var validationErr *ValidationError

	err := svc.Submit(context.Background(), &models.StudentStory{Outcome: models.OutcomeSuccess})
	require.ErrorAs(t, err, &validationErr)

	err = svc.Submit(context.Background(), &models.StudentStory{Text: "текст", Outcome: "maybe"})
	require.ErrorAs(t, err, &validationErr)
}

func TestStorySubmitSwallowsStoreFailure(t *testing.T) {
	t.Parallel()

	writer := &fakeStoryWriter{err: errors.New("connection refused")}
	svc := NewStoryService(writer, zap.NewNop())

	story := &models.StudentStory{Text: "текст", Outcome: models.OutcomeFailure}
	// Best-effort persistence: the caller never sees a store failure.
	assert.NoError(t, svc.Submit(context.Background(), story))
}
