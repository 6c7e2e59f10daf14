package ollama

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

func TestCompleteSendsGenerateRequest(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"model": "llama3.1", "response": "Thought: done.\nAction: Finish[x]", "done": true, "prompt_eval_count": 7, "eval_count": 3}`))
	}))
	defer server.Close()

	p := NewProvider("local", server.URL, time.Second)

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Model:       "llama3.1",
		Prompt:      "Question: q\nThought:",
		Stop:        []string{"\nObservation: "},
		MaxTokens:   32,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	require.Equal(t, "Thought: done.\nAction: Finish[x]", resp.Text)
	require.Equal(t, "stop", resp.FinishReason)
	require.Equal(t, 10, resp.Usage.TotalTokens)

	require.Equal(t, "llama3.1", got["model"])
	require.Equal(t, false, got["stream"])
	options := got["options"].(map[string]interface{})
	require.Equal(t, []interface{}{"\nObservation: "}, options["stop"])
	require.Equal(t, float64(32), options["num_predict"])
}

func TestCompleteCutsEchoedStopSequence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": "Action: Search[x]\nObservation: fake", "done": true}`))
	}))
	defer server.Close()

	p := NewProvider("local", server.URL, time.Second)

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Model: "m",
		Stop:  []string{"\nObservation: "},
	})
	require.NoError(t, err)
	require.Equal(t, "Action: Search[x]", resp.Text)
}

func TestCompleteTruncatedGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": "partial", "done": false}`))
	}))
	defer server.Close()

	p := NewProvider("local", server.URL, time.Second)

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{Model: "m"})
	require.NoError(t, err)
	require.Equal(t, "length", resp.FinishReason)
}

func TestCompleteRequiresModel(t *testing.T) {
	p := NewProvider("local", "http://127.0.0.1:0", time.Second)

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Prompt: "x"})
	require.Error(t, err)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewProvider("local", server.URL, time.Second)

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Model: "m"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}
