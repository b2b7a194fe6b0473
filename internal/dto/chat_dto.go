package dto

import "minima-be/internal/entity"

type ChatRequest struct {
	Messages []entity.Message `json:"messages" validate:"required,min=1"`
	// FileNames selects per-file document indices to retrieve from.
	FileNames []string `json:"fileNames,omitempty"`
	// WebSearch enables live web retrieval for this turn.
	WebSearch bool `json:"webSearch,omitempty"`
	// ConversationId, when set, makes the server persist the completed turn.
	ConversationId string `json:"conversationId,omitempty"`
}
