package agent

import (
	"fmt"
	"regexp"
	"strings"
)

// ActionKind tags the outcome of parsing one model response.
type ActionKind int

const (
	// ActionUnparseable means the response did not carry a recognizable
	// action line. The caller decides whether to repair-retry or fail.
	ActionUnparseable ActionKind = iota
	// ActionTool is a request to invoke a registered tool.
	ActionTool
	// ActionFinish is the final answer; Input holds the answer text.
	ActionFinish
)

// ParsedAction is the structured form of one model response. It is produced
// fresh per response and never persisted beyond the current step.
type ParsedAction struct {
	Kind  ActionKind
	Tool  string
	Input string
}

// Dialect is the prefix vocabulary shared by the prompt renderer and the
// action parser for one agent variant. Renderer and parser must use the same
// dialect and step index, or every action becomes unparseable.
type Dialect struct {
	// Bracketed dialect: actions look like "Action 3: Search[term]" when
	// Numbered, "Action: Search[term]" otherwise.
	Numbered        bool
	ThoughtWord     string
	ActionWord      string
	ObservationWord string
	// FinishTool is the sentinel tool name whose invocation carries the
	// final answer.
	FinishTool string

	// Labeled dialect: the action line is "<ActionLabel> <input>" and the
	// final answer line is "<FinishLabel><answer>". All labeled actions
	// dispatch to LabeledTool.
	Labeled          bool
	ActionLabel      string
	ObservationLabel string
	FinishLabel      string
	LabeledTool      string
}

// ThoughtCue is the trailing open prompt for the next model call, e.g.
// "Thought 2:". Labeled dialects continue the transcript without a cue.
func (d Dialect) ThoughtCue(step int) string {
	if d.Labeled {
		return ""
	}
	if d.Numbered {
		return fmt.Sprintf("%s %d:", d.ThoughtWord, step)
	}
	return d.ThoughtWord + ":"
}

// ActionPrefix is the exact literal the parser requires at the start of the
// action line for the given step.
func (d Dialect) ActionPrefix(step int) string {
	if d.Labeled {
		return d.ActionLabel + " "
	}
	if d.Numbered {
		return fmt.Sprintf("%s %d: ", d.ActionWord, step)
	}
	return d.ActionWord + ": "
}

// ObservationPrefix labels a tool result in the rendered transcript.
func (d Dialect) ObservationPrefix(step int) string {
	if d.Labeled {
		return d.ObservationLabel
	}
	if d.Numbered {
		return fmt.Sprintf("%s %d: ", d.ObservationWord, step)
	}
	return d.ObservationWord + ": "
}

// Stop returns the stop sequences for the given step. Halting generation at
// the observation prefix keeps the model from fabricating tool results.
func (d Dialect) Stop(step int) []string {
	return []string{"\n" + d.ObservationPrefix(step)}
}

// RenderStep serializes one completed step into transcript form.
func (d Dialect) RenderStep(step int, s Step) string {
	var b strings.Builder
	if d.Labeled {
		if s.Thought != "" {
			b.WriteString(s.Thought)
			b.WriteString("\n")
		}
		b.WriteString(d.ActionPrefix(step))
		b.WriteString(s.Input)
	} else {
		b.WriteString(d.ThoughtCue(step))
		b.WriteString(" ")
		b.WriteString(s.Thought)
		b.WriteString("\n")
		b.WriteString(d.ActionPrefix(step))
		b.WriteString(s.Tool)
		b.WriteString("[")
		b.WriteString(s.Input)
		b.WriteString("]")
	}
	b.WriteString("\n")
	b.WriteString(d.ObservationPrefix(step))
	b.WriteString(s.Observation)
	b.WriteString("\n")
	return b.String()
}

// actionPattern extracts "<tool>[<input>]" with a lazy match on the first
// bracketed group.
var actionPattern = regexp.MustCompile(`(.*?)\[(.*?)\]`)

// ParseAction turns raw model output into a ParsedAction. Only the last line
// is inspected. A missing action prefix yields ActionUnparseable (the caller
// may repair-retry); a present prefix with malformed brackets is a hard
// *ParseError, since the model's instruction-following has broken down.
func ParseAction(d Dialect, step int, output string) (ParsedAction, error) {
	line := lastLine(output)

	if d.Labeled {
		if idx := strings.Index(line, d.FinishLabel); idx >= 0 {
			return ParsedAction{Kind: ActionFinish, Tool: "Final Answer", Input: strings.TrimSpace(line[idx+len(d.FinishLabel):])}, nil
		}
		if !strings.Contains(line, d.ActionLabel) {
			return ParsedAction{Kind: ActionUnparseable}, nil
		}
		after := line[strings.Index(line, d.ActionLabel)+len(d.ActionLabel):]
		return ParsedAction{Kind: ActionTool, Tool: d.LabeledTool, Input: strings.TrimSpace(after)}, nil
	}

	prefix := d.ActionPrefix(step)
	if !strings.HasPrefix(line, prefix) {
		return ParsedAction{Kind: ActionUnparseable}, nil
	}

	directive := line[len(prefix):]
	m := actionPattern.FindStringSubmatch(directive)
	if m == nil {
		return ParsedAction{}, &ParseError{Raw: directive}
	}

	if m[1] == d.FinishTool {
		return ParsedAction{Kind: ActionFinish, Tool: m[1], Input: m[2]}, nil
	}
	return ParsedAction{Kind: ActionTool, Tool: m[1], Input: m[2]}, nil
}

func lastLine(text string) string {
	if idx := strings.LastIndex(text, "\n"); idx >= 0 {
		return text[idx+1:]
	}
	return text
}
