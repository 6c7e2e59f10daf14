package mock

import (
	"context"

	"github.com/reagent-dev/reagent/internal/llm"
)

// Provider is a test double implementing llm.Provider.
type Provider struct {
	NameValue  string
	CompleteFn func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error)
	// Outputs are returned in order when CompleteFn is nil; stop sequences
	// are applied to each.
	Outputs []string
	calls   int
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

// Calls reports how many completions were requested.
func (p *Provider) Calls() int {
	return p.calls
}

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	p.calls++
	if p.CompleteFn != nil {
		return p.CompleteFn(ctx, req)
	}
	text := "mock"
	if len(p.Outputs) > 0 {
		text = p.Outputs[0]
		if len(p.Outputs) > 1 {
			p.Outputs = p.Outputs[1:]
		}
	}
	return llm.CompletionResponse{
		Text:         llm.CutAtStop(text, req.Stop),
		FinishReason: "stop",
		ProviderName: p.Name(),
		Model:        req.Model,
	}, nil
}
