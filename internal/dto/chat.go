package dto

import "rag-mentor/internal/models"

type ChatFilters struct {
	Level   string   `json:"level,omitempty"`
	Stage   []string `json:"stage,omitempty"`
	Channel []string `json:"channel,omitempty"`
	Goal    []string `json:"goal,omitempty"`
}

type ChatRequest struct {
	UserMessage  string                    `json:"user_message"`
	ConvoHistory []models.ConversationTurn `json:"convo_history"`
	Filters      *ChatFilters              `json:"filters,omitempty"`
}

// ToFilter converts the wire filters to the domain filter. A nil filters
// object means no constraints.
func (r *ChatRequest) ToFilter() models.Filter {
	if r.Filters == nil {
		return models.Filter{}
	}
	return models.Filter{
		Level:   r.Filters.Level,
		Stage:   r.Filters.Stage,
		Channel: r.Filters.Channel,
		Goal:    r.Filters.Goal,
	}
}

type ChatResponse struct {
	Answer    string   `json:"answer"`
	UsedKuIDs []string `json:"used_ku_ids"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
