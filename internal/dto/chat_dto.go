package dto

import (
	"advisor-chat-be/internal/entity"
)

type SendChatRequest struct {
	Text      string `json:"text" validate:"required"`
	AutoSpeak bool   `json:"auto_speak"`
}

type SendChatResponse struct {
	UserMessage      entity.Message `json:"user_message"`
	AssistantMessage entity.Message `json:"assistant_message"`
}

// Stream event types written on the SSE response.
const (
	ChatEventFragment = "fragment"
	ChatEventDone     = "done"
)

// ChatStreamEvent carries the whole sanitized answer so far, not the delta.
type ChatStreamEvent struct {
	Type      string `json:"type"`
	Category  string `json:"category"`
	MessageId string `json:"message_id"`
	Text      string `json:"text"`
}

type FocusResponse struct {
	Source  *SourceResponse `json:"source"`
	Welcome *entity.Message `json:"welcome,omitempty"`
}
