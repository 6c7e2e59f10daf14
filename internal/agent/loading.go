package agent

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/reagent-dev/reagent/internal/docstore"
)

// Definition is a serialized agent description loaded from a JSON or YAML
// file: the variant name plus loop parameters.
type Definition struct {
	Variant       string  `mapstructure:"variant"`
	Model         string  `mapstructure:"model"`
	MaxIterations int     `mapstructure:"max_iterations"`
	RepairRetry   string  `mapstructure:"repair_retry"` // auto, on, off
	MaxTokens     int     `mapstructure:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature"`
}

// Deps are the collaborators a Definition may need when building an agent.
type Deps struct {
	Models ModelSource
	// Store backs the react-docstore variant.
	Store docstore.Store
	// Tools backs the zero-shot variant and, when it holds a single
	// "Intermediate Answer" tool, the self-ask variant.
	Tools *ToolRegistry
}

// LoadDefinition reads an agent definition from a .json or .yaml file.
func LoadDefinition(path string) (Definition, error) {
	v := viper.New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return Definition{}, &ConfigurationError{Reason: fmt.Sprintf("agent file %s must be json or yaml", path)}
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Definition{}, fmt.Errorf("read agent file: %w", err)
	}

	var def Definition
	if err := v.Unmarshal(&def); err != nil {
		return Definition{}, fmt.Errorf("unmarshal agent file: %w", err)
	}
	if def.Variant == "" {
		return Definition{}, &ConfigurationError{Reason: "agent file must name a variant"}
	}
	return def, nil
}

// Build constructs the agent the definition describes. Unsupported variant
// names fail before any model call is made.
func (d Definition) Build(deps Deps) (*Agent, error) {
	opts := Options{
		Model:         d.Model,
		MaxIterations: d.MaxIterations,
		MaxTokens:     d.MaxTokens,
		Temperature:   d.Temperature,
	}

	switch strings.ToLower(strings.TrimSpace(d.RepairRetry)) {
	case "", "auto":
	case "on":
		opts.RepairRetry = boolPtr(true)
	case "off":
		opts.RepairRetry = boolPtr(false)
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("repair_retry must be auto, on or off, got %q", d.RepairRetry)}
	}

	switch d.Variant {
	case VariantZeroShot:
		return NewZeroShot(deps.Models, deps.Tools, opts)
	case VariantDocstore:
		if deps.Store == nil {
			return nil, &ConfigurationError{Reason: "react-docstore requires a document store"}
		}
		return NewDocstore(deps.Models, deps.Store, opts)
	case VariantSelfAsk:
		if deps.Tools == nil || deps.Tools.Len() != 1 {
			return nil, &ConfigurationError{Reason: "self-ask-with-search requires exactly one tool"}
		}
		search, _ := deps.Tools.Lookup(deps.Tools.Names()[0])
		return NewSelfAsk(deps.Models, search, opts)
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("loading %q agent not supported", d.Variant)}
	}
}

func boolPtr(v bool) *bool {
	return &v
}
