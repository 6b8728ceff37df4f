package huggingface

import (
	"advisor-chat-be/pkg/llm"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

// Request Payload Structure (OpenAI Compatible)
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func toMessages(req *llm.ChatRequest) []chatMessage {
	messages := make([]chatMessage, 0, len(req.Contents)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemInstruction})
	}
	for _, c := range req.Contents {
		role := c.Role
		if role == llm.RoleModel {
			role = "assistant"
		}
		texts := make([]string, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p.InlineData != nil {
				texts = append(texts, fmt.Sprintf("[attached %s document, not readable by this model]", p.InlineData.MimeType))
				continue
			}
			texts = append(texts, p.Text)
		}
		messages = append(messages, chatMessage{Role: role, Content: strings.Join(texts, "\n\n")})
	}
	return messages
}

func (p *HuggingFaceProvider) StreamChat(ctx context.Context, req *llm.ChatRequest, options ...llm.Option) (<-chan llm.StreamChunk, error) {
	opts := llm.Apply(llm.Options{
		Model:       p.model,
		MaxTokens:   2048,
		Temperature: 0.7,
	}, options...)

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    toMessages(req),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stream:      true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	chunks := make(chan llm.StreamChunk)
	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		send := func(c llm.StreamChunk) bool {
			select {
			case chunks <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := llm.ReadSSE(resp.Body, func(data []byte) error {
			if string(bytes.TrimSpace(data)) == "[DONE]" {
				return llm.ErrStopEvents
			}
			var event chatStreamEvent
			if err := json.Unmarshal(data, &event); err != nil {
				return fmt.Errorf("failed to decode stream event: %w", err)
			}
			if event.Error != nil {
				return fmt.Errorf("huggingface api returned error: %s", event.Error.Message)
			}
			for _, choice := range event.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !send(llm.StreamChunk{Text: choice.Delta.Content}) {
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			send(llm.StreamChunk{Err: err})
		}
	}()

	return chunks, nil
}
