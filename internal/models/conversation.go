package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single message in a session's history. History is
// append-only and owned by the caller; the service only reads it when
// assembling a prompt.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
