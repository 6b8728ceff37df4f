package service

import (
	"context"

	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/websocket"
	"advisor-chat-be/pkg/playback"
)

type IPlaybackService interface {
	// Toggle starts reading the message aloud, or stops it when it is the one
	// already being prepared or played.
	Toggle(ctx context.Context, messageID, text string) playback.Status
	Stop() playback.Status
	Status() playback.Status
}

type playbackService struct {
	controller *playback.Controller
	logger     logger.ILogger
}

var playbackGauge = map[playback.State]float64{
	playback.StateIdle:      0,
	playback.StatePreparing: 1,
	playback.StatePlaying:   2,
}

// NewPlaybackService publishes every state change on the event channel and the
// playback gauge.
func NewPlaybackService(controller *playback.Controller, broadcaster websocket.Broadcaster, m *metrics.Metrics, log logger.ILogger) IPlaybackService {
	controller.OnChange(func(st playback.Status) {
		m.SetPlaybackState(playbackGauge[st.State])
		if broadcaster != nil {
			broadcaster.Broadcast(websocket.EventPlaybackState, st)
		}
		log.Debug("PLAYBACK", "State changed", map[string]interface{}{
			"state":      st.State,
			"message_id": st.MessageID,
		})
	})

	return &playbackService{controller: controller, logger: log}
}

func (s *playbackService) Toggle(ctx context.Context, messageID, text string) playback.Status {
	// Preparation is cancelled by Stop or a later toggle, not by the caller leaving.
	return s.controller.Toggle(context.WithoutCancel(ctx), messageID, text)
}

func (s *playbackService) Stop() playback.Status {
	return s.controller.Stop()
}

func (s *playbackService) Status() playback.Status {
	return s.controller.Status()
}
