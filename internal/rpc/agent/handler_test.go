package agent

import (
	"bufio"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reagent-dev/reagent/internal/rpc"
)

func decodeNDJSON(t *testing.T, body string) []rpc.RunEvent {
	t.Helper()
	var events []rpc.RunEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev rpc.RunEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		events = append(events, ev)
	}
	return events
}

func TestHandlerStreamsNDJSON(t *testing.T) {
	runner := docstoreRunner(t, []string{
		"Thought 1: search.\nAction 1: Search[Canada]",
		"Thought 2: done.\nAction 2: Finish[Ottawa]",
	})
	h := NewHandler(runner, nil)

	req := httptest.NewRequest("POST", "/agent/run", strings.NewReader(`{"question": "capital of Canada?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	events := decodeNDJSON(t, rec.Body.String())
	require.Len(t, events, 4)
	require.Equal(t, "step", events[0].Type)
	require.Equal(t, "answer", events[2].Type)
	require.Equal(t, "Ottawa", events[2].Answer)
	require.Equal(t, "done", events[3].Type)

	// A run id is assigned when the request carries none.
	require.NotEmpty(t, events[0].RunID)
	require.Equal(t, events[0].RunID, events[3].RunID)
}

func TestHandlerRejectsNonPost(t *testing.T) {
	h := NewHandler(docstoreRunner(t, nil), nil)

	req := httptest.NewRequest("GET", "/agent/run", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 405, rec.Code)
}

func TestHandlerRejectsInvalidJSON(t *testing.T) {
	h := NewHandler(docstoreRunner(t, nil), nil)

	req := httptest.NewRequest("POST", "/agent/run", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
}

func TestHandlerRejectsUnknownVariant(t *testing.T) {
	h := NewHandler(docstoreRunner(t, nil), nil)

	req := httptest.NewRequest("POST", "/agent/run", strings.NewReader(`{"variant": "nope", "question": "q"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	require.Contains(t, rec.Body.String(), "runner error")
}
