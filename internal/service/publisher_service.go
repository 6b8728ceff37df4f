package service

import (
	"encoding/json"

	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/workspace"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService hands workspace snapshots to the sync consumer.
type IPublisherService interface {
	workspace.Mirror
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    log,
	}
}

func (p *publisherService) Mirror(snap workspace.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		p.logger.Error("SYNC", "Failed to encode workspace snapshot", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("SYNC", "Failed to publish workspace snapshot", map[string]interface{}{
			"version": snap.Version,
			"error":   err.Error(),
		})
	}
}
