package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"advisor-chat-be/internal/constant"
	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/websocket"
	"advisor-chat-be/internal/workspace"
	"advisor-chat-be/pkg/events"
	"advisor-chat-be/pkg/sanitizer"

	"github.com/google/uuid"
)

var ErrStreamInFlight = errors.New("an answer is still streaming for this transcript")

type IChatService interface {
	// Send records the question and an empty answer placeholder, then streams the
	// answer into the placeholder. The returned channel must be drained; it ends
	// with one done event.
	Send(ctx context.Context, category entity.Category, req *dto.SendChatRequest) (*dto.SendChatResponse, <-chan dto.ChatStreamEvent, error)
	GetTranscript(ctx context.Context, category entity.Category) ([]entity.Message, error)
	Focus(ctx context.Context, sourceId uuid.UUID) (*dto.FocusResponse, error)
	GetFocus(ctx context.Context) (*dto.FocusResponse, error)
	MessageText(ctx context.Context, category entity.Category, messageId string) (string, error)
}

type chatService struct {
	store       *workspace.Store
	assistant   IAssistantService
	playback    IPlaybackService
	broadcaster websocket.Broadcaster
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      logger.ILogger

	mu       sync.Mutex
	inFlight map[entity.Category]bool
}

func NewChatService(
	store *workspace.Store,
	assistant IAssistantService,
	playback IPlaybackService,
	broadcaster websocket.Broadcaster,
	publisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatService{
		store:       store,
		assistant:   assistant,
		playback:    playback,
		broadcaster: broadcaster,
		publisher:   publisher,
		metrics:     m,
		logger:      log,
		inFlight:    make(map[entity.Category]bool),
	}
}

// workspaceError translates store sentinels into HTTP-facing errors.
func workspaceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workspace.ErrSourceNotFound):
		return apperror.NotFound("Source not found", err)
	case errors.Is(err, workspace.ErrMessageNotFound):
		return apperror.NotFound("Message not found", err)
	case errors.Is(err, workspace.ErrNotRepositorySource):
		return apperror.BadRequest("Only repository sources can be focused", err)
	case errors.Is(err, workspace.ErrInvalidCategory):
		return apperror.BadRequest("Invalid category", err)
	default:
		return err
	}
}

func validCategory(category entity.Category) error {
	if !category.Valid() {
		return apperror.BadRequest("Invalid category", workspace.ErrInvalidCategory)
	}
	return nil
}

func (s *chatService) acquire(category entity.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[category] {
		return false
	}
	s.inFlight[category] = true
	return true
}

func (s *chatService) release(category entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, category)
}

func (s *chatService) broadcast(eventType string, data interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(eventType, data)
	}
}

func (s *chatService) Send(ctx context.Context, category entity.Category, req *dto.SendChatRequest) (*dto.SendChatResponse, <-chan dto.ChatStreamEvent, error) {
	if err := validCategory(category); err != nil {
		return nil, nil, err
	}
	query := strings.TrimSpace(req.Text)
	if query == "" {
		return nil, nil, apperror.BadRequest("Message text is required", nil)
	}
	if !s.acquire(category) {
		return nil, nil, apperror.Conflict("An answer is still being written for this chat", ErrStreamInFlight)
	}

	sources := s.store.ContextSources(category)

	now := time.Now()
	userMsg := entity.Message{Id: uuid.NewString(), Role: entity.RoleUser, Text: query, CreatedAt: now}
	placeholder := entity.Message{Id: uuid.NewString(), Role: entity.RoleAssistant, Text: "", CreatedAt: now}

	if err := s.store.AppendMessage(category, userMsg); err != nil {
		s.release(category)
		return nil, nil, workspaceError(err)
	}
	// History ends with the question itself, ahead of the answer placeholder.
	history := s.store.Transcript(category)
	if err := s.store.AppendMessage(category, placeholder); err != nil {
		s.release(category)
		return nil, nil, workspaceError(err)
	}

	s.logger.Info("CHAT", "Answer stream started", map[string]interface{}{
		"category":   category,
		"message_id": placeholder.Id,
		"sources":    len(sources),
		"history":    len(history),
	})

	// The answer keeps streaming into the transcript after the caller goes away.
	streamCtx := context.WithoutCancel(ctx)
	out := make(chan dto.ChatStreamEvent, 16)
	go s.run(streamCtx, category, query, placeholder.Id, sources, history, req.AutoSpeak, out)

	return &dto.SendChatResponse{UserMessage: userMsg, AssistantMessage: placeholder}, out, nil
}

func (s *chatService) run(
	ctx context.Context,
	category entity.Category,
	query, messageId string,
	sources []entity.Source,
	history []entity.Message,
	autoSpeak bool,
	out chan<- dto.ChatStreamEvent,
) {
	var running strings.Builder
	fragments := 0
	text := ""

	for frag := range s.assistant.Stream(ctx, query, sources, history) {
		running.WriteString(frag)
		fragments++
		text = sanitizer.Sanitize(running.String())

		if err := s.store.ReplaceMessageText(category, messageId, text); err != nil {
			// The transcript was cleared under us; keep consuming so the stream ends cleanly.
			s.logger.Warn("CHAT", "Placeholder vanished while streaming", map[string]interface{}{
				"category":   category,
				"message_id": messageId,
			})
		}

		evt := dto.ChatStreamEvent{Type: dto.ChatEventFragment, Category: string(category), MessageId: messageId, Text: text}
		s.metrics.RecordFragment(string(category))
		s.broadcast(websocket.EventChatFragment, evt)
		out <- evt
	}

	outcome := metrics.OutcomeCompleted
	if text == "" {
		outcome = metrics.OutcomeEmpty
		text = constant.UnexpectedErrorApology
		_ = s.store.ReplaceMessageText(category, messageId, text)
	}
	s.release(category)

	s.metrics.RecordStream(string(category), outcome)
	s.logger.Info("CHAT", "Answer stream finished", map[string]interface{}{
		"category":   category,
		"message_id": messageId,
		"fragments":  fragments,
		"outcome":    outcome,
	})

	done := dto.ChatStreamEvent{Type: dto.ChatEventDone, Category: string(category), MessageId: messageId, Text: text}
	s.broadcast(websocket.EventChatFragment, done)
	out <- done
	close(out)

	if err := s.publisher.Publish(ctx, events.New(events.ChatCompleted, map[string]interface{}{
		"category":   string(category),
		"message_id": messageId,
		"fragments":  fragments,
		"outcome":    outcome,
	})); err != nil {
		s.logger.Warn("CHAT", "Failed to publish chat event", map[string]interface{}{"error": err.Error()})
	}

	// out is already closed; synthesis can take as long as it needs.
	if autoSpeak && outcome == metrics.OutcomeCompleted && s.playback != nil {
		s.playback.Toggle(ctx, messageId, text)
	}
}

func (s *chatService) GetTranscript(ctx context.Context, category entity.Category) ([]entity.Message, error) {
	if err := validCategory(category); err != nil {
		return nil, err
	}
	return s.store.Transcript(category), nil
}

func (s *chatService) Focus(ctx context.Context, sourceId uuid.UUID) (*dto.FocusResponse, error) {
	welcome, err := s.store.Focus(sourceId)
	if err != nil {
		return nil, workspaceError(err)
	}

	src, _ := s.store.Source(sourceId)
	s.logger.Info("CHAT", "Repository source focused", map[string]interface{}{
		"source_id": sourceId,
		"name":      src.Name,
	})
	s.broadcast(websocket.EventWorkspaceChanged, nil)

	res := dto.NewSourceResponse(src)
	return &dto.FocusResponse{Source: &res, Welcome: &welcome}, nil
}

func (s *chatService) GetFocus(ctx context.Context) (*dto.FocusResponse, error) {
	src, ok := s.store.Focused()
	if !ok {
		return &dto.FocusResponse{}, nil
	}
	res := dto.NewSourceResponse(src)
	return &dto.FocusResponse{Source: &res}, nil
}

func (s *chatService) MessageText(ctx context.Context, category entity.Category, messageId string) (string, error) {
	if err := validCategory(category); err != nil {
		return "", err
	}
	msg, ok := s.store.Message(category, messageId)
	if !ok {
		return "", workspaceError(workspace.ErrMessageNotFound)
	}
	return msg.Text, nil
}
