package agent

import (
	"fmt"

	"github.com/reagent-dev/reagent/internal/docstore"
)

// Variant names accepted by LoadDefinition and the daemon configuration.
const (
	VariantZeroShot = "zero-shot-react-description"
	VariantDocstore = "react-docstore"
	VariantSelfAsk  = "self-ask-with-search"
)

// SelfAskToolName is the single tool the self-ask variant dispatches to.
const SelfAskToolName = "Intermediate Answer"

// Variant is the immutable configuration record that specializes the one
// generic loop: dialect, prompt template, tool constraints and the default
// repair-retry policy. Variants never override control flow.
type Variant struct {
	Name          string
	Dialect       Dialect
	Template      string
	RepairRetry   bool
	ValidateTools func(*ToolRegistry) error
}

const zeroShotTemplate = `Answer the following question as best you can. You have access to the following tools:

{tools}

Use the following format:

Thought: reason about what to do next
Action: <tool>[<input>] where <tool> is one of [{tool_names}]
Observation: the result of the action
... (Thought/Action/Observation can repeat)
Action: Finish[<answer>] once you know the final answer

Question: {question}`

const docstoreTemplate = `Solve the question by interleaving Thought, Action and Observation steps. Thought reasons about the current situation, and Action is one of:
(1) Search[entity], which searches the entity in the document store and returns the first paragraph if it exists. If not, it returns some similar entities to search.
(2) Lookup[keyword], which returns the next paragraph containing the keyword in the current document.
(3) Finish[answer], which finishes the task with the answer.

Question: Which national anthem was adopted first, O Canada or La Marseillaise?
Thought 1: I need to search O Canada and La Marseillaise and compare their adoption dates.
Action 1: Search[O Canada]
Observation 1: O Canada is the national anthem of Canada, adopted officially in 1980.
Thought 2: O Canada was adopted in 1980. I need to search La Marseillaise next.
Action 2: Search[La Marseillaise]
Observation 2: La Marseillaise is the national anthem of France, adopted in 1795.
Thought 3: 1795 comes before 1980, so La Marseillaise was adopted first.
Action 3: Finish[La Marseillaise]

Question: {question}`

const selfAskTemplate = `Question: Who lived longer, Muhammad Ali or Alan Turing?
Are follow up questions needed here: Yes.
Follow up: How old was Muhammad Ali when he died?
Intermediate answer: Muhammad Ali was 74 years old when he died.
Follow up: How old was Alan Turing when he died?
Intermediate answer: Alan Turing was 41 years old when he died.
So the final answer is: Muhammad Ali

Question: {question}
Are follow up questions needed here:`

// ZeroShotVariant is general-purpose tool use with unnumbered
// Thought/Action/Observation prefixes. Any non-empty tool set is accepted.
func ZeroShotVariant() Variant {
	return Variant{
		Name: VariantZeroShot,
		Dialect: Dialect{
			ThoughtWord:     "Thought",
			ActionWord:      "Action",
			ObservationWord: "Observation",
			FinishTool:      "Finish",
		},
		Template: zeroShotTemplate,
		ValidateTools: func(r *ToolRegistry) error {
			if r.Len() == 0 {
				return &ConfigurationError{Reason: "at least one tool must be provided"}
			}
			if _, ok := r.Lookup("Finish"); ok {
				return &ConfigurationError{Reason: `tool name "Finish" is reserved for the final answer`}
			}
			return nil
		},
	}
}

// DocstoreVariant is document exploration with numbered prefixes and exactly
// the Search and Lookup tools. Repair retry is on by default.
func DocstoreVariant() Variant {
	return Variant{
		Name: VariantDocstore,
		Dialect: Dialect{
			Numbered:        true,
			ThoughtWord:     "Thought",
			ActionWord:      "Action",
			ObservationWord: "Observation",
			FinishTool:      "Finish",
		},
		Template:      docstoreTemplate,
		RepairRetry:   true,
		ValidateTools: requireExactTools("Search", "Lookup"),
	}
}

// SelfAskVariant is single-tool search-then-answer using the labeled
// Follow up / Intermediate answer dialect.
func SelfAskVariant() Variant {
	return Variant{
		Name: VariantSelfAsk,
		Dialect: Dialect{
			Labeled:          true,
			ActionLabel:      "Follow up:",
			ObservationLabel: "Intermediate answer: ",
			FinishLabel:      "So the final answer is: ",
			LabeledTool:      SelfAskToolName,
		},
		Template:      selfAskTemplate,
		ValidateTools: requireExactTools(SelfAskToolName),
	}
}

// requireExactTools enforces an exact name set, in any order.
func requireExactTools(names ...string) func(*ToolRegistry) error {
	return func(r *ToolRegistry) error {
		if r.Len() != len(names) {
			return &ConfigurationError{Reason: fmt.Sprintf("exactly %d tools must be provided, got %d", len(names), r.Len())}
		}
		for _, name := range names {
			if _, ok := r.Lookup(name); !ok {
				return &ConfigurationError{Reason: fmt.Sprintf("tool %q is required", name)}
			}
		}
		return nil
	}
}

// NewZeroShot builds a general tool-use agent over a fixed tool registry.
func NewZeroShot(models ModelSource, tools *ToolRegistry, opts Options) (*Agent, error) {
	return New(models, ZeroShotVariant(), StaticTools(tools), opts)
}

// NewDocstore builds a document-exploration agent. A fresh Explorer (and
// with it the "currently open document" state) is allocated for every run.
func NewDocstore(models ModelSource, store docstore.Store, opts Options) (*Agent, error) {
	source := func() (*ToolRegistry, error) {
		ex := docstore.NewExplorer(store)
		return NewToolRegistry(
			Tool{
				Name:        "Search",
				Description: "Search for a document by title; returns its first paragraph or similar titles.",
				Func:        ex.Search,
			},
			Tool{
				Name:        "Lookup",
				Description: "Return the next paragraph containing the keyword in the current document.",
				Func:        ex.Lookup,
			},
		)
	}
	return New(models, DocstoreVariant(), source, opts)
}

// NewSelfAsk builds a self-ask agent around a single search tool, which must
// be named "Intermediate Answer".
func NewSelfAsk(models ModelSource, search Tool, opts Options) (*Agent, error) {
	source := func() (*ToolRegistry, error) {
		return NewToolRegistry(search)
	}
	return New(models, SelfAskVariant(), source, opts)
}
