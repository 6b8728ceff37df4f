package llm

import (
	"context"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Blob is binary content sent inline, base64-encoded.
type Blob struct {
	MimeType string
	Data     string
}

// Part is either text or an inline blob.
type Part struct {
	Text       string
	InlineData *Blob
}

// Content is one turn of the conversation in a provider-agnostic format.
type Content struct {
	Role  string // "user" or "model"
	Parts []Part
}

type ChatRequest struct {
	SystemInstruction string
	Contents          []Content
}

// StreamChunk carries one fragment of generated text, or the error that ended the stream.
type StreamChunk struct {
	Text string
	Err  error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature    float64
	MaxTokens      int
	Model          string // Override default model
	ThinkingBudget *int
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithThinkingBudget(budget int) Option {
	return func(o *Options) {
		o.ThinkingBudget = &budget
	}
}

// Apply resolves options on top of the defaults.
func Apply(defaults Options, opts ...Option) *Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// StreamChat sends the conversation and returns generated text as it arrives.
	// A non-nil error means the request never started. Once streaming, failures are
	// delivered as a final chunk with Err set. The channel is always closed.
	StreamChat(ctx context.Context, req *ChatRequest, options ...Option) (<-chan StreamChunk, error)
}
