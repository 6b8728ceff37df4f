package service

import (
	"context"
	"fmt"

	"advisor-chat-be/internal/constant"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/pkg/llm"
	"advisor-chat-be/pkg/sanitizer"
)

type IAssistantService interface {
	// Stream yields sanitized answer fragments. The channel is closed when the
	// answer ends; a transport failure yields one apology fragment first.
	Stream(ctx context.Context, query string, sources []entity.Source, history []entity.Message) <-chan string
}

type assistantService struct {
	provider    llm.LLMProvider
	temperature float64
	maxTokens   int
	logger      logger.ILogger
}

// NewAssistantService builds the streaming client. maxTokens <= 0 leaves the
// provider's own output limit in place.
func NewAssistantService(provider llm.LLMProvider, temperature float64, maxTokens int, log logger.ILogger) IAssistantService {
	return &assistantService{
		provider:    provider,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      log,
	}
}

func buildHistory(history []entity.Message) []llm.Content {
	filled := make([]entity.Message, 0, len(history))
	for _, m := range history {
		if m.Text != "" {
			filled = append(filled, m)
		}
	}
	if len(filled) > constant.HistoryWindow {
		filled = filled[len(filled)-constant.HistoryWindow:]
	}

	contents := make([]llm.Content, 0, len(filled))
	for _, m := range filled {
		role := llm.RoleModel
		if m.Role == entity.RoleUser {
			role = llm.RoleUser
		}
		contents = append(contents, llm.Content{Role: role, Parts: []llm.Part{{Text: m.Text}}})
	}
	return contents
}

func sourcePart(src entity.Source) llm.Part {
	if src.Kind == entity.SourceKindPDF {
		return llm.Part{InlineData: &llm.Blob{MimeType: "application/pdf", Data: src.Content}}
	}
	return llm.Part{Text: fmt.Sprintf(constant.SourceTextBlockTemplate, src.Name, src.Content)}
}

func buildChatRequest(query string, sources []entity.Source, history []entity.Message) *llm.ChatRequest {
	turn := make([]llm.Part, 0, len(sources)+1)
	for _, src := range sources {
		turn = append(turn, sourcePart(src))
	}
	turn = append(turn, llm.Part{Text: query})

	contents := buildHistory(history)
	contents = append(contents, llm.Content{Role: llm.RoleUser, Parts: turn})

	return &llm.ChatRequest{
		SystemInstruction: constant.AdvisorSystemInstruction,
		Contents:          contents,
	}
}

func (s *assistantService) Stream(ctx context.Context, query string, sources []entity.Source, history []entity.Message) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		emit := func(text string) bool {
			select {
			case out <- text:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(err error) {
			s.logger.Error("ASSISTANT", "Answer stream failed", map[string]interface{}{"error": err.Error()})
			emit(constant.ConnectionErrorApology)
		}

		req := buildChatRequest(query, sources, history)
		opts := []llm.Option{
			llm.WithTemperature(s.temperature),
			llm.WithThinkingBudget(constant.AdvisorThinkingBudget),
		}
		if s.maxTokens > 0 {
			opts = append(opts, llm.WithMaxTokens(s.maxTokens))
		}
		chunks, err := s.provider.StreamChat(ctx, req, opts...)
		if err != nil {
			fail(err)
			return
		}

		for chunk := range chunks {
			if chunk.Err != nil {
				fail(chunk.Err)
				// Drain so the provider goroutine can exit.
				for range chunks {
				}
				return
			}
			if chunk.Text == "" {
				continue
			}
			if !emit(sanitizer.ReplaceForbidden(chunk.Text)) {
				for range chunks {
				}
				return
			}
		}
	}()

	return out
}
