package agent

import "strings"

// Renderer builds the exact text sent to the model: the variant preamble with
// tool descriptions substituted, every prior step in scratchpad order, then
// the open cue for the next thought. Rendering is deterministic; nothing is
// truncated, reordered or dropped.
type Renderer struct {
	dialect  Dialect
	preamble string
}

// NewRenderer expands the {tools} and {tool_names} placeholders once; the
// {question} placeholder is filled per render.
func NewRenderer(d Dialect, template string, tools *ToolRegistry) Renderer {
	r := strings.NewReplacer(
		"{tools}", tools.Describe(),
		"{tool_names}", strings.Join(tools.Names(), ", "),
	)
	return Renderer{dialect: d, preamble: r.Replace(template)}
}

// Render produces the prompt for the given step index (1-based). The index in
// the trailing cue is the same one the parser expects back on the action line.
func (r Renderer) Render(question string, steps []Step, step int) string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(r.preamble, "{question}", question))
	b.WriteString("\n")
	for k, s := range steps {
		b.WriteString(r.dialect.RenderStep(k+1, s))
	}
	b.WriteString(r.dialect.ThoughtCue(step))
	return b.String()
}
