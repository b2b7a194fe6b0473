package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"minima-be/internal/apperror"
	"minima-be/internal/entity"
	"minima-be/internal/model"
	"minima-be/internal/repository/contract"

	"gorm.io/gorm"
)

// GormHistoryRepository stores conversations in a relational database, one
// row per conversation with the message list as a JSON column. The database
// serializes concurrent writers, which removes the lost-update window the
// file store has to lock around.
type GormHistoryRepository struct {
	db *gorm.DB
}

var _ contract.HistoryRepository = &GormHistoryRepository{}

func NewGormHistoryRepository(db *gorm.DB) (*GormHistoryRepository, error) {
	if err := db.AutoMigrate(&model.Conversation{}); err != nil {
		return nil, fmt.Errorf("migrate conversations: %w", err)
	}
	return &GormHistoryRepository{db: db}, nil
}

func (r *GormHistoryRepository) List(ctx context.Context, partition string) ([]entity.Conversation, error) {
	var rows []model.Conversation
	err := r.db.WithContext(ctx).
		Where("partition_key = ?", partition).
		Order("id asc"). // surrogate key order == insertion order
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	conversations := make([]entity.Conversation, 0, len(rows))
	for _, row := range rows {
		c, err := rowToEntity(row)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

func (r *GormHistoryRepository) Upsert(ctx context.Context, partition, conversationId string, messages []entity.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	var row model.Conversation
	err = r.db.WithContext(ctx).
		Where("partition_key = ? AND conversation_id = ?", partition, conversationId).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = model.Conversation{
			PartitionKey:   partition,
			ConversationId: conversationId,
			Timestamp:      time.Now(),
			Messages:       payload,
		}
		return r.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return err
	}

	row.Messages = payload
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *GormHistoryRepository) DeleteMessage(ctx context.Context, partition, conversationId string, index int) error {
	var row model.Conversation
	err := r.db.WithContext(ctx).
		Where("partition_key = ? AND conversation_id = ?", partition, conversationId).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFoundf("conversation %s", conversationId)
	}
	if err != nil {
		return err
	}

	var messages []entity.Message
	if err := json.Unmarshal(row.Messages, &messages); err != nil {
		return fmt.Errorf("unmarshal messages: %w", err)
	}
	if index < 0 || index >= len(messages) {
		return nil
	}
	messages = append(messages[:index], messages[index+1:]...)

	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	row.Messages = payload
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *GormHistoryRepository) DeleteConversation(ctx context.Context, partition, conversationId string) error {
	return r.db.WithContext(ctx).
		Where("partition_key = ? AND conversation_id = ?", partition, conversationId).
		Delete(&model.Conversation{}).Error
}

func rowToEntity(row model.Conversation) (entity.Conversation, error) {
	var messages []entity.Message
	if len(row.Messages) > 0 {
		if err := json.Unmarshal(row.Messages, &messages); err != nil {
			return entity.Conversation{}, fmt.Errorf("unmarshal messages: %w", err)
		}
	}
	return entity.Conversation{
		Id:        row.ConversationId,
		Timestamp: row.Timestamp,
		Messages:  messages,
	}, nil
}
