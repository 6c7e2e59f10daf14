package llm

import (
	"context"
	"strings"
)

// CompletionRequest is the input for completion providers. Prompt is the full
// rendered text; Stop lists sequences at which generation must halt.
type CompletionRequest struct {
	Model       string
	Prompt      string
	Stop        []string
	MaxTokens   int
	Temperature float64
}

// Usage captures token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the result of a completion call. Text never contains
// a stop sequence.
type CompletionResponse struct {
	Text         string
	FinishReason string
	Usage        Usage
	ProviderName string
	Model        string
}

// Provider defines the contract for LLM providers.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// CutAtStop truncates text at the first occurrence of any stop sequence. The
// stop sequence itself is excluded from the result. Providers that pass stop
// sequences to the API still apply this as a guard against servers that echo
// them back.
func CutAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if idx := strings.Index(text, s); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return text[:cut]
}
