package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsOptionsAndReadsUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, 0.3, req.Options.Temperature)
		assert.Equal(t, 500, req.Options.NumPredict)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message:         ollamaMessage{Role: "assistant", Content: "回答"},
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       12,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	out, err := p.Generate(context.Background(), "質問", llm.WithTemperature(0.3), llm.WithMaxTokens(500))
	require.NoError(t, err)

	assert.Equal(t, "回答", out.Text)
	assert.Equal(t, 120, out.PromptTokens)
	assert.Equal(t, 12, out.OutputTokens)
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, apperror.IsUpstream(err))
}
