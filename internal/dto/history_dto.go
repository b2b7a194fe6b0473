package dto

import "minima-be/internal/entity"

type SaveConversationRequest struct {
	ConversationId string           `json:"conversationId" validate:"required"`
	Messages       []entity.Message `json:"messages" validate:"required"`
}

type DeleteHistoryRequest struct {
	ConversationId string `json:"conversationId" validate:"required"`
	// MessageIndex selects a single message to delete. When nil the whole
	// conversation is deleted.
	MessageIndex *int `json:"messageIndex,omitempty"`
}
