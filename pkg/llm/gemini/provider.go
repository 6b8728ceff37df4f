package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"advisor-chat-be/pkg/llm"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

type GeminiProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &GeminiProvider{}

// NewGeminiProvider builds a streaming provider. The client has no timeout: answers
// stream for as long as the model keeps producing.
func NewGeminiProvider(baseURL, apiKey, modelName string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ModelName: modelName,
		Client:    &http.Client{},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiGenerationConfig struct {
	Temperature     *float64              `json:"temperature,omitempty"`
	MaxOutputTokens int                   `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiStreamResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (r *geminiStreamResponse) text() string {
	var sb strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func buildRequest(req *llm.ChatRequest, options *llm.Options) geminiRequest {
	payload := geminiRequest{
		Contents: make([]geminiContent, 0, len(req.Contents)),
	}

	for _, c := range req.Contents {
		content := geminiContent{Role: c.Role, Parts: make([]geminiPart, 0, len(c.Parts))}
		for _, p := range c.Parts {
			if p.InlineData != nil {
				content.Parts = append(content.Parts, geminiPart{
					InlineData: &geminiBlob{MimeType: p.InlineData.MimeType, Data: p.InlineData.Data},
				})
				continue
			}
			content.Parts = append(content.Parts, geminiPart{Text: p.Text})
		}
		payload.Contents = append(payload.Contents, content)
	}

	if req.SystemInstruction != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemInstruction}},
		}
	}

	temp := options.Temperature
	payload.GenerationConfig = &geminiGenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: options.MaxTokens,
	}
	if options.ThinkingBudget != nil {
		payload.GenerationConfig.ThinkingConfig = &geminiThinkingConfig{ThinkingBudget: *options.ThinkingBudget}
	}

	return payload
}

// --- Interface Implementation ---

func (g *GeminiProvider) StreamChat(ctx context.Context, req *llm.ChatRequest, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7}, opts...)

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payloadBytes, err := json.Marshal(buildRequest(req, options))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", g.BaseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", g.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("gemini error: status %d, body: %s", resp.StatusCode, string(body))
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
			var event geminiStreamResponse
			if err := json.Unmarshal(data, &event); err != nil {
				return fmt.Errorf("unmarshal stream event: %w", err)
			}
			if event.Error != nil {
				return fmt.Errorf("gemini stream error %d: %s", event.Error.Code, event.Error.Message)
			}
			if text := event.text(); text != "" {
				if !send(llm.StreamChunk{Text: text}) {
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
