package model

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is the relational row backing one saved chat. The surrogate
// primary key doubles as the insertion-order cursor for listing.
type Conversation struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	PartitionKey   string         `gorm:"size:255;uniqueIndex:idx_partition_conversation;not null"`
	ConversationId string         `gorm:"size:64;uniqueIndex:idx_partition_conversation;not null"`
	Timestamp      time.Time      `gorm:"not null"`
	Messages       datatypes.JSON `gorm:"type:jsonb"`
}

func (Conversation) TableName() string {
	return "conversations"
}
