package service

import (
	"context"
	"strings"

	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/repository/memory"
	"advisor-chat-be/pkg/playback"
	"advisor-chat-be/pkg/speech"
)

type ISpeechService interface {
	playback.Synthesizer
}

type speechService struct {
	provider speech.SpeechProvider
	cache    *memory.AudioCacheRepository
	metrics  *metrics.Metrics
	logger   logger.ILogger
}

func NewSpeechService(provider speech.SpeechProvider, cache *memory.AudioCacheRepository, m *metrics.Metrics, log logger.ILogger) ISpeechService {
	return &speechService{
		provider: provider,
		cache:    cache,
		metrics:  m,
		logger:   log,
	}
}

// Synthesize never reports an error: any failure means no audio.
func (s *speechService) Synthesize(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		s.metrics.RecordSpeech(metrics.OutcomeEmpty)
		return "", false
	}

	if s.cache != nil {
		if payload, ok := s.cache.Get(text); ok {
			s.metrics.RecordSpeech(metrics.OutcomeCached)
			return payload, true
		}
	}

	payload, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		s.metrics.RecordSpeech(metrics.OutcomeFailed)
		s.logger.Warn("SPEECH", "Speech synthesis failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}
	if payload == "" {
		s.metrics.RecordSpeech(metrics.OutcomeEmpty)
		s.logger.Warn("SPEECH", "Speech synthesis returned no audio", nil)
		return "", false
	}

	if s.cache != nil {
		s.cache.Save(text, payload)
	}
	s.metrics.RecordSpeech(metrics.OutcomeCompleted)
	return payload, true
}
