package agent

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed or inconsistent agent setup. It is
// raised at construction time and never mid-run.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "agent configuration: " + e.Reason
}

// ParseError reports model output that does not conform to the action grammar
// after any repair retry. Raw carries the offending text for diagnosis.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse action directive: %q", e.Raw)
}

// DispatchError reports a parsed action naming a tool absent from the
// registry. It indicates a prompt/tool-registration mismatch and is never
// retried.
type DispatchError struct {
	Tool  string
	Known []string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("tool %q is not registered (known: %s)", e.Tool, strings.Join(e.Known, ", "))
}

// FatalToolError wraps a tool failure that must abort the run instead of
// being fed back to the model as an observation.
type FatalToolError struct {
	Err error
}

func (e *FatalToolError) Error() string {
	return "fatal tool error: " + e.Err.Error()
}

func (e *FatalToolError) Unwrap() error {
	return e.Err
}

// IterationLimitError reports a loop that exhausted its iteration budget
// without producing a final answer.
type IterationLimitError struct {
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("agent stopped after reaching the limit of %d iterations", e.Limit)
}
