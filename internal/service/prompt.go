package service

import (
	"fmt"
	"strings"

	"rag-mentor/internal/models"
)

const (
	// historyDepth is how many trailing conversation turns make it into the
	// prompt. Older turns stay with the caller but are not sent to the model.
	historyDepth = 5

	// contentBudget caps each knowledge block's content, in runes.
	contentBudget = 500

	truncationMarker = "..."

	emptyHistoryMarker   = "(диалог только начался)"
	emptyKnowledgeMarker = "Нет релевантных техник в базе знаний."
)

// PromptAssembler builds the generation prompt. The prompt always has the
// same five sections in the same order: persona framing, dialog history,
// the user's question, retrieved techniques, instruction suffix. Sections
// are never omitted; empty ones render an explicit marker.
type PromptAssembler struct{}

func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{}
}

// Assemble renders the prompt and returns it together with the ordered list
// of ku_ids whose content was included. Pure and synchronous.
func (a *PromptAssembler) Assemble(userMessage string, history []models.ConversationTurn, units []models.ScoredUnit) (string, []string) {
	usedKuIDs := make([]string, 0, len(units))
	var knowledgeBlocks []string
	for _, su := range units {
		usedKuIDs = append(usedKuIDs, su.Unit.KuID)
		knowledgeBlocks = append(knowledgeBlocks,
			fmt.Sprintf("### Техника: %s\n\n%s", su.Unit.Title, truncate(su.Unit.Content, contentBudget)))
	}

	knowledgeText := emptyKnowledgeMarker
	if len(knowledgeBlocks) > 0 {
		knowledgeText = strings.Join(knowledgeBlocks, "\n\n")
	}

	historyText := emptyHistoryMarker
	if len(history) > 0 {
		if len(history) > historyDepth {
			history = history[len(history)-historyDepth:]
		}
		var b strings.Builder
		for _, turn := range history {
			b.WriteString(strings.ToUpper(turn.Role))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
		historyText = b.String()
	}

	prompt := fmt.Sprintf(`Ты — профессиональный наставник по социальным взаимодействиям.

История диалога:
%s

Вопрос пользователя:
%s

Релевантные техники из базы знаний:
%s

Дай практичный совет на основе этих техник. Будь конкретным, дай 1-3 варианта действий.`,
		historyText,
		userMessage,
		knowledgeText,
	)

	return prompt, usedKuIDs
}

// truncate cuts s to at most limit runes, appending a marker when cut.
// Rune-based so multi-byte Cyrillic text never splits mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + truncationMarker
}
