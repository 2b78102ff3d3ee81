package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryOutcome is the user's own verdict on how the advice worked out.
type StoryOutcome string

const (
	OutcomeSuccess StoryOutcome = "успех"
	OutcomeNeutral StoryOutcome = "нейтрально"
	OutcomeFailure StoryOutcome = "провал"
)

// ValidOutcome reports whether s is one of the known outcome values.
func ValidOutcome(s string) bool {
	switch StoryOutcome(s) {
	case OutcomeSuccess, OutcomeNeutral, OutcomeFailure:
		return true
	}
	return false
}

// StudentStory is an anonymized outcome record submitted by a user.
// Write-only: stored for later analysis, never read back by retrieval.
// UsedKuIDs keeps provenance between the story and the knowledge units the
// assistant consulted when it gave the advice.
type StudentStory struct {
	ID             uuid.UUID    `db:"id"`
	TelegramUserID *int64       `db:"telegram_user_id"`
	Level          string       `db:"level"`
	Stage          []string     `db:"stage"`
	Channel        []string     `db:"channel"`
	Goal           []string     `db:"goal"`
	Text           string       `db:"text"`
	Outcome        StoryOutcome `db:"outcome"`
	UsedKuIDs      []string     `db:"used_ku_ids"`
	Metadata       string       `db:"metadata"`
	CreatedAt      time.Time    `db:"created_at"`
}
