package factory

import (
	"testing"

	"advisor-chat-be/pkg/llm/gemini"
	"advisor-chat-be/pkg/llm/huggingface"
	"advisor-chat-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider("gemini", "gemini-2.5-flash", "", "key")
	require.NoError(t, err)
	assert.IsType(t, &gemini.GeminiProvider{}, p)

	p, err = NewLLMProvider("ollama", "llama3", "", "")
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)

	p, err = NewLLMProvider("huggingface", "m", "", "t")
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	_, err = NewLLMProvider("gemini", "m", "", "")
	assert.Error(t, err)

	_, err = NewLLMProvider("openai", "m", "", "k")
	assert.Error(t, err)
}
