package dto

type StoryRequest struct {
	TelegramUserID *int64   `json:"telegram_user_id,omitempty"`
	Level          string   `json:"level,omitempty"`
	Stage          []string `json:"stage,omitempty"`
	Channel        []string `json:"channel,omitempty"`
	Goal           []string `json:"goal,omitempty"`
	Text           string   `json:"text"`
	Outcome        string   `json:"outcome"`
	UsedKuIDs      []string `json:"used_ku_ids,omitempty"`
}

type StoryResponse struct {
	Status string `json:"status"`
}
