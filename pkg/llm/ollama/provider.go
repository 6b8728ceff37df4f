package ollama

import (
	"advisor-chat-be/pkg/llm"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client:    &http.Client{},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

func toMessages(req *llm.ChatRequest) []ollamaMessage {
	messages := make([]ollamaMessage, 0, len(req.Contents)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.SystemInstruction})
	}

	for _, c := range req.Contents {
		role := c.Role
		if role == llm.RoleModel {
			role = "assistant"
		}

		texts := make([]string, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p.InlineData != nil {
				// Ollama only ingests images; binary documents are announced, not sent.
				texts = append(texts, fmt.Sprintf("[attached %s document, not readable by this model]", p.InlineData.MimeType))
				continue
			}
			texts = append(texts, p.Text)
		}
		messages = append(messages, ollamaMessage{Role: role, Content: strings.Join(texts, "\n\n")})
	}

	return messages
}

// --- Interface Implementation ---

func (o *OllamaProvider) StreamChat(ctx context.Context, req *llm.ChatRequest, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	options := llm.Apply(llm.Options{Temperature: 0.7}, opts...)

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: toMessages(req),
		Stream:   true,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
			NumPredict:  options.MaxTokens,
		},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
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

		// One JSON object per line until done=true.
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), llm.MaxEventSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var frame ollamaChatResponse
			if err := json.Unmarshal(line, &frame); err != nil {
				send(llm.StreamChunk{Err: fmt.Errorf("unmarshal response: %w", err)})
				return
			}
			if frame.Error != "" {
				send(llm.StreamChunk{Err: errors.New("ollama stream error: " + frame.Error)})
				return
			}
			if frame.Message.Content != "" {
				if !send(llm.StreamChunk{Text: frame.Message.Content}) {
					return
				}
			}
			if frame.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			send(llm.StreamChunk{Err: fmt.Errorf("read stream: %w", err)})
			return
		}
		if ctx.Err() == nil {
			send(llm.StreamChunk{Err: io.ErrUnexpectedEOF})
		}
	}()

	return chunks, nil
}
