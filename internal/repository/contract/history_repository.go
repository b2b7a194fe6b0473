package contract

import (
	"context"

	"minima-be/internal/entity"
)

// HistoryRepository is the keyed conversation store. Every operation is
// scoped to a single user partition; implementations must serialize
// concurrent mutations so a read-modify-write cycle never loses an update.
type HistoryRepository interface {
	// List returns the partition's conversations in insertion order.
	List(ctx context.Context, partition string) ([]entity.Conversation, error)

	// Upsert replaces the message list of an existing conversation, or
	// appends a new conversation with a fresh timestamp. Full-replace
	// semantics: callers resend the complete message list each save.
	Upsert(ctx context.Context, partition, conversationId string, messages []entity.Message) error

	// DeleteMessage removes the message at index, shifting later messages
	// down. Returns apperror.ErrNotFound when the conversation is absent; an
	// out-of-range index is a no-op.
	DeleteMessage(ctx context.Context, partition, conversationId string, index int) error

	// DeleteConversation removes the whole conversation. Absent ids are a
	// no-op, not an error.
	DeleteConversation(ctx context.Context, partition, conversationId string) error
}
