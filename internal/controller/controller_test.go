package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/pkg/serverutils"
	"advisor-chat-be/internal/service"
	"advisor-chat-be/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	events  []dto.ChatStreamEvent
	sendErr error
}

func (f *fakeChatService) Send(ctx context.Context, category entity.Category, req *dto.SendChatRequest) (*dto.SendChatResponse, <-chan dto.ChatStreamEvent, error) {
	if f.sendErr != nil {
		return nil, nil, f.sendErr
	}
	ch := make(chan dto.ChatStreamEvent, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return &dto.SendChatResponse{
		UserMessage:      entity.Message{Id: "u1", Role: entity.RoleUser, Text: req.Text},
		AssistantMessage: entity.Message{Id: "a1", Role: entity.RoleAssistant},
	}, ch, nil
}

func (f *fakeChatService) GetTranscript(ctx context.Context, category entity.Category) ([]entity.Message, error) {
	return []entity.Message{{Id: "w-adv", Role: entity.RoleAssistant, Text: "hi"}}, nil
}

func (f *fakeChatService) Focus(ctx context.Context, sourceId uuid.UUID) (*dto.FocusResponse, error) {
	return nil, apperror.NotFound("Source not found", nil)
}

func (f *fakeChatService) GetFocus(ctx context.Context) (*dto.FocusResponse, error) {
	return &dto.FocusResponse{}, nil
}

func (f *fakeChatService) MessageText(ctx context.Context, category entity.Category, messageId string) (string, error) {
	return "text", nil
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	return app
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestSendStreamsServerSentEvents(t *testing.T) {
	chat := &fakeChatService{events: []dto.ChatStreamEvent{
		{Type: dto.ChatEventFragment, Category: "advisor", MessageId: "a1", Text: "أهلاً"},
		{Type: dto.ChatEventDone, Category: "advisor", MessageId: "a1", Text: "أهلاً"},
	}}
	app := newApp()
	NewChatController(chat).RegisterRoutes(app.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/advisor/send", jsonBody(t, dto.SendChatRequest{Text: "سؤال"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	frames := strings.Split(strings.TrimSpace(string(body)), "\n\n")
	require.Len(t, frames, 3)
	assert.True(t, strings.HasPrefix(frames[0], "event: accepted\ndata: "))
	assert.Contains(t, frames[0], `"id":"a1"`)
	assert.True(t, strings.HasPrefix(frames[1], "event: fragment\n"))
	assert.True(t, strings.HasPrefix(frames[2], "event: done\n"))
}

func TestSendReportsConflict(t *testing.T) {
	chat := &fakeChatService{sendErr: apperror.Conflict("busy", service.ErrStreamInFlight)}
	app := newApp()
	NewChatController(chat).RegisterRoutes(app.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/advisor/send", jsonBody(t, dto.SendChatRequest{Text: "q"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSendValidatesBody(t *testing.T) {
	app := newApp()
	NewChatController(&fakeChatService{}).RegisterRoutes(app.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/advisor/send", jsonBody(t, map[string]string{}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSourceRoutes(t *testing.T) {
	store := workspace.NewStore(nil)
	svc := service.NewSourceService(store, nil, nil, nil, nil, logger.NewNopLogger())

	denied := func(ctx *fiber.Ctx) error { return apperror.Unauthorized("Missing token") }
	allowed := func(ctx *fiber.Ctx) error { return ctx.Next() }

	locked := newApp()
	NewSourceController(svc).RegisterRoutes(locked.Group("/api"), denied)
	req := httptest.NewRequest(http.MethodPost, "/api/source/v1/advisor/text", jsonBody(t, dto.AddTextRequest{Text: "x"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := locked.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	app := newApp()
	NewSourceController(svc).RegisterRoutes(app.Group("/api"), allowed)

	req = httptest.NewRequest(http.MethodPost, "/api/source/v1/repository/text", jsonBody(t, dto.AddTextRequest{Text: "محتوى"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created serverutils.Response[dto.SourceResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "repository", created.Data.Category)
	assert.Equal(t, "text", created.Data.Kind)

	resp, err = app.Test(httptest.NewRequest(http.MethodPut, "/api/source/v1/"+created.Data.Id.String()+"/toggle", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/source/v1?category=repository", nil))
	require.NoError(t, err)
	var listed serverutils.Response[[]dto.SourceResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed.Data, 1)
	assert.False(t, listed.Data[0].Selected)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/source/v1?category=bogus", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/source/v1/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/source/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, store.Sources(entity.CategoryRepository))
}
