package nats

import (
	"context"
	"testing"

	"advisor-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	evt := events.New(events.SourceAdded, map[string]interface{}{"id": "x"})
	assert.Equal(t, "events.SOURCE_ADDED", Subject(evt))
}

func TestNewPublisherUnreachable(t *testing.T) {
	_, err := NewPublisher(context.Background(), "nats://127.0.0.1:1")
	assert.Error(t, err)
}
