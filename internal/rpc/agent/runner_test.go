package agent

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reagent-dev/reagent/internal/agent"
	"github.com/reagent-dev/reagent/internal/docstore"
	"github.com/reagent-dev/reagent/internal/llm"
	llmmock "github.com/reagent-dev/reagent/internal/llm/mock"
	"github.com/reagent-dev/reagent/internal/rpc"
)

func docstoreRunner(t *testing.T, outputs []string) *AgentRunner {
	t.Helper()

	reg := llm.NewRegistry()
	reg.RegisterProvider("mock", &llmmock.Provider{Outputs: outputs})
	reg.RegisterModel("test", llm.ModelRoute{Provider: "mock", Model: "m"}, true)

	store := docstore.NewInMemory(docstore.Document{
		Title:   "Canada",
		Content: "Ottawa is the capital of Canada.",
	})

	a, err := agent.NewDocstore(reg, store, agent.Options{})
	require.NoError(t, err)

	return &AgentRunner{
		Agents:         map[string]*agent.Agent{agent.VariantDocstore: a},
		DefaultVariant: agent.VariantDocstore,
		Logger:         zap.NewNop(),
	}
}

func collect(t *testing.T, ch <-chan rpc.RunEvent) []rpc.RunEvent {
	t.Helper()
	var events []rpc.RunEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestAgentRunnerStreamsStepsAnswerDone(t *testing.T) {
	runner := docstoreRunner(t, []string{
		"Thought 1: search.\nAction 1: Search[Canada]",
		"Thought 2: done.\nAction 2: Finish[Ottawa]",
	})

	req := httptest.NewRequest("POST", "/agent/run", nil)
	ch, err := runner.Run(req, rpc.RunRequest{RunID: "run-1", Question: "capital of Canada?"})
	require.NoError(t, err)

	events := collect(t, ch)
	require.Len(t, events, 4)

	require.Equal(t, "step", events[0].Type)
	require.Equal(t, 1, events[0].Step)
	require.Equal(t, "Search", events[0].Tool)
	require.Equal(t, "Canada", events[0].Input)
	require.Equal(t, "Ottawa is the capital of Canada.", events[0].Observation)
	require.Equal(t, "run-1", events[0].RunID)

	require.Equal(t, "step", events[1].Type)
	require.Equal(t, "Finish", events[1].Tool)

	require.Equal(t, "answer", events[2].Type)
	require.Equal(t, "Ottawa", events[2].Answer)
	require.Equal(t, 2, events[2].Step)

	require.Equal(t, "done", events[3].Type)
	require.True(t, events[3].Done)
}

func TestAgentRunnerClassifiesParseError(t *testing.T) {
	runner := docstoreRunner(t, []string{"I refuse to follow the format."})

	req := httptest.NewRequest("POST", "/agent/run", nil)
	ch, err := runner.Run(req, rpc.RunRequest{RunID: "run-2", Question: "q"})
	require.NoError(t, err)

	events := collect(t, ch)
	require.Len(t, events, 2)
	require.Equal(t, "error", events[0].Type)
	require.Equal(t, "parse", events[0].ErrorKind)
	require.NotEmpty(t, events[0].Error)
	require.Equal(t, "done", events[1].Type)
}

func TestAgentRunnerClassifiesDispatchError(t *testing.T) {
	runner := docstoreRunner(t, []string{"Thought 1: x.\nAction 1: Compute[1]"})

	req := httptest.NewRequest("POST", "/agent/run", nil)
	ch, err := runner.Run(req, rpc.RunRequest{Question: "q"})
	require.NoError(t, err)

	events := collect(t, ch)
	require.Equal(t, "dispatch", events[0].ErrorKind)
}

func TestAgentRunnerUnknownVariant(t *testing.T) {
	runner := docstoreRunner(t, nil)

	req := httptest.NewRequest("POST", "/agent/run", nil)
	_, err := runner.Run(req, rpc.RunRequest{Variant: "conversational-react", Question: "q"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not hosted")
}

func TestAgentRunnerUsesDefaultVariant(t *testing.T) {
	runner := docstoreRunner(t, []string{
		"Thought 1: done already.\nAction 1: Finish[ok]",
	})

	req := httptest.NewRequest("POST", "/agent/run", nil)
	ch, err := runner.Run(req, rpc.RunRequest{Question: "q"})
	require.NoError(t, err)

	events := collect(t, ch)
	require.Equal(t, "answer", events[len(events)-2].Type)
	require.Equal(t, "ok", events[len(events)-2].Answer)
}
