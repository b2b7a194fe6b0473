package service

import (
	"context"
	"time"

	"minima-be/internal/entity"
	"minima-be/internal/pkg/logger"
	"minima-be/internal/repository/contract"
	"minima-be/pkg/events"
	pktNats "minima-be/pkg/nats"
)

type IHistoryService interface {
	Save(ctx context.Context, ident *entity.Identity, conversationId string, messages []entity.Message) error
	List(ctx context.Context, ident *entity.Identity) ([]entity.Conversation, error)
	DeleteMessage(ctx context.Context, ident *entity.Identity, conversationId string, index int) error
	DeleteConversation(ctx context.Context, ident *entity.Identity, conversationId string) error
}

type historyService struct {
	repo      contract.HistoryRepository
	publisher *pktNats.Publisher // optional, nil when NATS is not configured
	logger    logger.ILogger
}

func NewHistoryService(repo contract.HistoryRepository, publisher *pktNats.Publisher, log logger.ILogger) IHistoryService {
	return &historyService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

func (s *historyService) Save(ctx context.Context, ident *entity.Identity, conversationId string, messages []entity.Message) error {
	if err := s.repo.Upsert(ctx, ident.PartitionKey, conversationId, messages); err != nil {
		return err
	}

	if s.publisher != nil {
		event := events.BaseEvent{
			Type: events.TypeConversationSaved,
			Data: map[string]interface{}{
				"partition":       ident.PartitionKey,
				"conversation_id": conversationId,
				"message_count":   len(messages),
			},
			OccurredAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			// event delivery is best-effort, the save already succeeded
			s.logger.Warn("history", "failed to publish conversation event", map[string]interface{}{"error": err.Error()})
		}
	}

	return nil
}

func (s *historyService) List(ctx context.Context, ident *entity.Identity) ([]entity.Conversation, error) {
	return s.repo.List(ctx, ident.PartitionKey)
}

func (s *historyService) DeleteMessage(ctx context.Context, ident *entity.Identity, conversationId string, index int) error {
	return s.repo.DeleteMessage(ctx, ident.PartitionKey, conversationId, index)
}

func (s *historyService) DeleteConversation(ctx context.Context, ident *entity.Identity, conversationId string) error {
	return s.repo.DeleteConversation(ctx, ident.PartitionKey, conversationId)
}
