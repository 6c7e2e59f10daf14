package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reagent-dev/reagent/internal/llm"
)

func TestCompleteForwardsPromptAndStop(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Thought 1: ok.\nAction 1: Finish[x]"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	p := NewProvider("openai", server.URL, "secret", time.Second)

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Model:       "gpt-4o-mini",
		Prompt:      "Question: q\nThought 1:",
		Stop:        []string{"\nObservation 1: "},
		MaxTokens:   64,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	require.Equal(t, "Thought 1: ok.\nAction 1: Finish[x]", resp.Text)
	require.Equal(t, "stop", resp.FinishReason)
	require.Equal(t, 15, resp.Usage.TotalTokens)

	require.Equal(t, "gpt-4o-mini", got["model"])
	require.Equal(t, []interface{}{"\nObservation 1: "}, got["stop"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]interface{})
	require.Equal(t, "user", msg["role"])
	require.Equal(t, "Question: q\nThought 1:", msg["content"])
}

func TestCompleteCutsEchoedStopSequence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "Action 1: Search[x]\nObservation 1: fabricated"}}]}`))
	}))
	defer server.Close()

	p := NewProvider("openai", server.URL, "", time.Second)

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Model: "m",
		Stop:  []string{"\nObservation 1: "},
	})
	require.NoError(t, err)
	require.Equal(t, "Action 1: Search[x]", resp.Text)
}

func TestCompleteRequiresModel(t *testing.T) {
	p := NewProvider("openai", "http://127.0.0.1:0", "", time.Second)

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Prompt: "x"})
	require.Error(t, err)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewProvider("openai", server.URL, "", time.Second)

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	p := NewProvider("openai", server.URL, "", time.Second)

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty choices")
}
