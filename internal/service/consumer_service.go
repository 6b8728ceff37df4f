package service

import (
	"context"
	"encoding/json"
	"sync"

	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/workspace"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IConsumerService applies mirrored workspace snapshots to persistence.
type IConsumerService interface {
	// Consume subscribes and returns once messages are being processed in the background.
	Consume(ctx context.Context) error
	// Done is closed when the subscription ends.
	Done() <-chan struct{}
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	persistence IPersistenceService
	metrics     *metrics.Metrics
	logger      logger.ILogger

	mu          sync.Mutex
	lastApplied uint64
	done        chan struct{}
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	persistence IPersistenceService,
	m *metrics.Metrics,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		persistence: persistence,
		metrics:     m,
		logger:      log,
		done:        make(chan struct{}),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		defer close(cs.done)
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Done() <-chan struct{} {
	return cs.done
}

// processMessage always acks: persistence failures are logged, never retried.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var snap workspace.Snapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		cs.logger.Error("SYNC", "Failed to decode workspace snapshot", map[string]interface{}{"error": err.Error()})
		return
	}

	cs.apply(ctx, snap)
}

func (cs *consumerService) apply(ctx context.Context, snap workspace.Snapshot) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	// Snapshots may arrive out of order; an older one must not overwrite a newer one.
	if snap.Version <= cs.lastApplied {
		cs.metrics.RecordSync(metrics.OutcomeStale)
		return
	}
	cs.lastApplied = snap.Version

	if err := cs.persistence.Sync(ctx, snap); err != nil {
		cs.logger.Error("SYNC", "Workspace sync failed, state kept in memory", map[string]interface{}{
			"version": snap.Version,
			"error":   err.Error(),
		})
	}
}
