package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reagent-dev/reagent/internal/llm"
)

// ModelSource resolves a logical model name to a provider and route.
// *llm.Registry satisfies it.
type ModelSource interface {
	Resolve(model string) (llm.Provider, llm.ModelRoute, error)
}

// ToolSource yields the tool registry for one run. Variants with stateful
// tools return a fresh registry per call so that concurrent runs never share
// per-run state.
type ToolSource func() (*ToolRegistry, error)

// StaticTools adapts a fixed, stateless registry shared across runs.
func StaticTools(tools *ToolRegistry) ToolSource {
	return func() (*ToolRegistry, error) {
		if tools == nil {
			return nil, &ConfigurationError{Reason: "tool registry is required"}
		}
		return tools, nil
	}
}

// Options tune one agent instance. Zero values defer to the model route and
// the variant defaults.
type Options struct {
	// Model is the logical model id in the registry ("" = default model).
	Model string
	// MaxIterations bounds completed steps per run; 0 means unbounded.
	MaxIterations int
	// RepairRetry overrides the variant's repair-retry policy when non-nil.
	RepairRetry *bool
	MaxTokens   int
	Temperature float64
}

// StepHook observes each completed step as the run progresses. index is the
// 1-based step number.
type StepHook func(index int, step Step)

// Result is the outcome of one run. On failure, Steps still carries the
// partial scratchpad for debuggability.
type Result struct {
	Answer string
	Steps  []Step
	Model  string
}

// Agent binds the generic loop to a variant, a tool source and a model. The
// instance holds no per-run state and is safe for concurrent runs; the
// scratchpad, step counter and stateful tools are allocated fresh inside Run.
type Agent struct {
	models  ModelSource
	variant Variant
	tools   ToolSource
	opts    Options
}

// New validates the configuration and constructs an agent. All configuration
// errors surface here; they never occur mid-run.
func New(models ModelSource, variant Variant, tools ToolSource, opts Options) (*Agent, error) {
	if models == nil {
		return nil, &ConfigurationError{Reason: "model source is required"}
	}
	if tools == nil {
		return nil, &ConfigurationError{Reason: "tool source is required"}
	}
	if opts.MaxIterations < 0 {
		return nil, &ConfigurationError{Reason: "max iterations must be >= 0"}
	}

	reg, err := tools()
	if err != nil {
		return nil, err
	}
	if variant.ValidateTools != nil {
		if err := variant.ValidateTools(reg); err != nil {
			return nil, err
		}
	}

	if _, _, err := models.Resolve(opts.Model); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	return &Agent{models: models, variant: variant, tools: tools, opts: opts}, nil
}

// Variant returns the variant name this agent is configured with.
func (a *Agent) Variant() string {
	return a.variant.Name
}

// Run executes the loop until a final answer, a typed failure or iteration
// exhaustion.
func (a *Agent) Run(ctx context.Context, question string) (Result, error) {
	return a.RunWithHook(ctx, question, nil)
}

// RunWithHook is Run with a per-step callback, used by streaming transports.
func (a *Agent) RunWithHook(ctx context.Context, question string, hook StepHook) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, fmt.Errorf("question is required")
	}

	provider, route, err := a.models.Resolve(a.opts.Model)
	if err != nil {
		return Result{}, fmt.Errorf("resolve model: %w", err)
	}

	tools, err := a.tools()
	if err != nil {
		return Result{}, err
	}

	dialect := a.variant.Dialect
	renderer := NewRenderer(dialect, a.variant.Template, tools)

	var pad Scratchpad
	for step := 1; ; step++ {
		// Cancellation is honored between iterations, never mid-call.
		if err := ctx.Err(); err != nil {
			return Result{Steps: pad.Steps(), Model: route.Name}, fmt.Errorf("run cancelled: %w", err)
		}
		if a.opts.MaxIterations > 0 && step > a.opts.MaxIterations {
			return Result{Steps: pad.Steps(), Model: route.Name}, &IterationLimitError{Limit: a.opts.MaxIterations}
		}

		prompt := renderer.Render(question, pad.Steps(), step)
		stop := dialect.Stop(step)

		text, err := a.complete(ctx, provider, route, prompt, stop)
		if err != nil {
			return Result{Steps: pad.Steps(), Model: route.Name}, fmt.Errorf("model call: %w", err)
		}

		action, perr := ParseAction(dialect, step, text)
		if perr == nil && action.Kind == ActionUnparseable && a.repairEnabled() {
			text, action, perr = a.repair(ctx, provider, route, prompt, text, step, stop)
		}
		if perr != nil {
			return Result{Steps: pad.Steps(), Model: route.Name}, perr
		}
		if action.Kind == ActionUnparseable {
			return Result{Steps: pad.Steps(), Model: route.Name}, &ParseError{Raw: text}
		}
		if action.Kind == ActionFinish {
			// The finishing iteration is recorded like any other step.
			completed := Step{
				Thought: extractThought(dialect, step, text),
				Tool:    action.Tool,
				Input:   action.Input,
			}
			pad.Append(completed)
			if hook != nil {
				hook(step, completed)
			}
			return Result{Answer: action.Input, Steps: pad.Steps(), Model: route.Name}, nil
		}

		tool, ok := tools.Lookup(action.Tool)
		if !ok {
			return Result{Steps: pad.Steps(), Model: route.Name}, &DispatchError{Tool: action.Tool, Known: tools.Names()}
		}

		observation, toolErr := tool.Func(ctx, action.Input)
		if toolErr != nil {
			var fatal *FatalToolError
			if errors.As(toolErr, &fatal) {
				return Result{Steps: pad.Steps(), Model: route.Name}, fmt.Errorf("tool %s: %w", action.Tool, toolErr)
			}
			// Recoverable: feed the failure back so the model can react.
			observation = toolErr.Error()
		}

		completed := Step{
			Thought:     extractThought(dialect, step, text),
			Tool:        action.Tool,
			Input:       action.Input,
			Observation: observation,
		}
		pad.Append(completed)
		if hook != nil {
			hook(step, completed)
		}
	}
}

// repair appends the expected action cue to the malformed output and asks
// the model to continue exactly once.
func (a *Agent) repair(ctx context.Context, provider llm.Provider, route llm.ModelRoute, prompt, text string, step int, stop []string) (string, ParsedAction, error) {
	cue := strings.TrimSuffix(a.variant.Dialect.ActionPrefix(step), " ")
	fixed := text + "\n" + cue

	continuation, err := a.complete(ctx, provider, route, prompt+fixed, stop)
	if err != nil {
		return "", ParsedAction{}, fmt.Errorf("model call: %w", err)
	}

	combined := fixed + continuation
	action, perr := ParseAction(a.variant.Dialect, step, combined)
	return combined, action, perr
}

func (a *Agent) complete(ctx context.Context, provider llm.Provider, route llm.ModelRoute, prompt string, stop []string) (string, error) {
	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		Model:       route.Model,
		Prompt:      prompt,
		Stop:        stop,
		MaxTokens:   pickInt(a.opts.MaxTokens, route.MaxTokens),
		Temperature: pickFloat(a.opts.Temperature, route.Temperature),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (a *Agent) repairEnabled() bool {
	if a.opts.RepairRetry != nil {
		return *a.opts.RepairRetry
	}
	return a.variant.RepairRetry
}

// extractThought returns the text preceding the action line, with the
// rendered thought cue stripped so it is not duplicated in later prompts.
func extractThought(d Dialect, step int, text string) string {
	idx := strings.LastIndex(text, "\n")
	if idx < 0 {
		return ""
	}
	thought := strings.TrimSpace(text[:idx])
	if cue := strings.TrimSpace(d.ThoughtCue(step)); cue != "" {
		thought = strings.TrimSpace(strings.TrimPrefix(thought, cue))
	}
	return thought
}

func pickInt(agentVal, routeVal int) int {
	if agentVal > 0 {
		return agentVal
	}
	return routeVal
}

func pickFloat(agentVal, routeVal float64) float64 {
	if agentVal > 0 {
		return agentVal
	}
	return routeVal
}
