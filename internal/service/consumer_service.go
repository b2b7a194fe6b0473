package service

import (
	"context"
	"encoding/json"
	"time"

	"minima-be/internal/pkg/logger"
	"minima-be/pkg/events"
	pktNats "minima-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains index events off the in-process bus. Each event is
// audit-logged and, when a NATS publisher is configured, forwarded to the
// external bus for downstream consumers.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	natsPublisher *pktNats.Publisher
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		natsPublisher: natsPublisher,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal index event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are not retriable
		return
	}

	cs.logger.Info("consumer", "document indexed", payload)

	if cs.natsPublisher != nil {
		event := events.BaseEvent{
			Type:       events.TypeDocumentIndexed,
			Data:       payload,
			OccurredAt: time.Now(),
		}
		if err := cs.natsPublisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("consumer", "failed to forward index event to NATS", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
