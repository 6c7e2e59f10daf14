package agent

import (
	"context"
	"fmt"
	"strings"
)

// Tool is a named, synchronous, string-in/string-out capability the loop can
// dispatch to. A returned error becomes the observation unless wrapped in
// FatalToolError.
type Tool struct {
	Name        string
	Description string
	Func        func(ctx context.Context, input string) (string, error)
}

// ToolRegistry holds an ordered, fixed set of tools. The name set is
// immutable after construction.
type ToolRegistry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewToolRegistry builds a registry, rejecting duplicate or empty names.
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			return nil, &ConfigurationError{Reason: "tool name cannot be empty"}
		}
		if t.Func == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("tool %q has no function", t.Name)}
		}
		if _, ok := byName[t.Name]; ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate tool name %q", t.Name)}
		}
		byName[t.Name] = t
	}
	return &ToolRegistry{tools: append([]Tool(nil), tools...), byName: byName}, nil
}

// Lookup returns the tool registered under name. Matching is exact: case and
// whitespace sensitive.
func (r *ToolRegistry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Describe renders one "{name}: {description}" line per tool, in registration
// order, for verbatim inclusion in prompts.
func (r *ToolRegistry) Describe() string {
	lines := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		lines = append(lines, t.Name+": "+t.Description)
	}
	return strings.Join(lines, "\n")
}

// Names returns tool names in registration order.
func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	return names
}

// Len reports the number of registered tools.
func (r *ToolRegistry) Len() int {
	return len(r.tools)
}
