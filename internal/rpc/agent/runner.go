package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reagent-dev/reagent/internal/agent"
	"github.com/reagent-dev/reagent/internal/observability"
	"github.com/reagent-dev/reagent/internal/rpc"
)

// Runner executes a run and yields streamed events.
type Runner interface {
	Run(r *http.Request, req rpc.RunRequest) (<-chan rpc.RunEvent, error)
}

// AgentRunner bridges hosted agent instances to RPC events.
type AgentRunner struct {
	// Agents maps variant name to a constructed agent.
	Agents map[string]*agent.Agent
	// DefaultVariant is used when the request names none.
	DefaultVariant string
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// Run selects the requested variant and drives one loop run, emitting a step
// event per iteration and a terminal answer/error event.
func (r *AgentRunner) Run(reqCtx *http.Request, req rpc.RunRequest) (<-chan rpc.RunEvent, error) {
	variant := req.Variant
	if variant == "" {
		variant = r.DefaultVariant
	}
	a, ok := r.Agents[variant]
	if !ok {
		return nil, fmt.Errorf("variant %q is not hosted", variant)
	}

	out := make(chan rpc.RunEvent, 16)
	ctx := reqCtx.Context()

	go func() {
		defer close(out)
		start := time.Now()

		hook := func(index int, step agent.Step) {
			if r.Metrics != nil {
				r.Metrics.RecordToolCall(step.Tool, "ok")
			}
			out <- rpc.RunEvent{
				Type:        "step",
				RunID:       req.RunID,
				Step:        index,
				Thought:     step.Thought,
				Tool:        step.Tool,
				Input:       step.Input,
				Observation: step.Observation,
			}
		}

		result, err := a.RunWithHook(ctx, req.Question, hook)
		steps := len(result.Steps)

		if err != nil {
			kind := classifyError(err)
			if r.Metrics != nil {
				r.Metrics.RecordRun(variant, kind, time.Since(start), steps)
				if kind == "parse" {
					r.Metrics.RecordParseFailure(variant)
				}
			}
			if r.Logger != nil {
				r.Logger.Warn("agent run failed",
					zap.String("variant", variant),
					zap.String("run_id", req.RunID),
					zap.String("kind", kind),
					zap.Int("steps", steps),
					zap.Error(err))
			}
			out <- rpc.RunEvent{Type: "error", RunID: req.RunID, Step: steps, Error: err.Error(), ErrorKind: kind}
			out <- rpc.RunEvent{Type: "done", RunID: req.RunID, Done: true}
			return
		}

		if r.Metrics != nil {
			r.Metrics.RecordRun(variant, "success", time.Since(start), steps)
		}
		if r.Logger != nil {
			r.Logger.Info("agent run finished",
				zap.String("variant", variant),
				zap.String("run_id", req.RunID),
				zap.Int("steps", steps),
				zap.Duration("duration", time.Since(start)))
		}
		out <- rpc.RunEvent{Type: "answer", RunID: req.RunID, Step: steps, Answer: result.Answer}
		out <- rpc.RunEvent{Type: "done", RunID: req.RunID, Done: true}
	}()

	return out, nil
}

func classifyError(err error) string {
	var parseErr *agent.ParseError
	var dispatchErr *agent.DispatchError
	var limitErr *agent.IterationLimitError
	var fatalTool *agent.FatalToolError

	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &dispatchErr):
		return "dispatch"
	case errors.As(err, &limitErr):
		return "iteration_limit"
	case errors.As(err, &fatalTool):
		return "tool"
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
