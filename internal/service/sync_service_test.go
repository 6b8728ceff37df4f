package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/workspace"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersistence struct {
	IPersistenceService
	mu     sync.Mutex
	synced []workspace.Snapshot
}

func (r *recordingPersistence) Sync(ctx context.Context, snap workspace.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, snap)
	return nil
}

func (r *recordingPersistence) versions() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, 0, len(r.synced))
	for _, s := range r.synced {
		out = append(out, s.Version)
	}
	return out
}

func TestConsumerDropsStaleSnapshots(t *testing.T) {
	persistence := &recordingPersistence{}
	cs := NewConsumerService(nil, "topic", persistence, nil, logger.NewNopLogger()).(*consumerService)

	ctx := context.Background()
	cs.apply(ctx, workspace.Snapshot{Version: 1})
	cs.apply(ctx, workspace.Snapshot{Version: 3})
	cs.apply(ctx, workspace.Snapshot{Version: 2})
	cs.apply(ctx, workspace.Snapshot{Version: 3})

	assert.Equal(t, []uint64{1, 3}, persistence.versions())
}

func TestMirrorReachesPersistence(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	defer pubSub.Close()

	persistence := &recordingPersistence{}
	consumer := NewConsumerService(pubSub, "WORKSPACE_SYNC", persistence, nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	store := workspace.NewStore(NewPublisherService("WORKSPACE_SYNC", pubSub, logger.NewNopLogger()))
	src, err := store.AddSource(workspace.NewSource{Name: "doc", Category: entity.CategoryRepository, Kind: entity.SourceKindText})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(persistence.versions()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	persistence.mu.Lock()
	got := persistence.synced[0]
	persistence.mu.Unlock()
	require.Len(t, got.Sources, 1)
	assert.Equal(t, src.Id, got.Sources[0].Id)
	assert.Equal(t, uuid.Nil, got.Focused)
	assert.Len(t, got.Advisor, 1)
}
