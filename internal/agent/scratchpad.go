package agent

// Step is one completed loop iteration. Immutable once created.
type Step struct {
	Thought     string
	Tool        string
	Input       string
	Observation string
}

// Scratchpad is the append-only transcript of completed steps for one run.
// It grows by exactly one Step per iteration and is never mutated in place.
type Scratchpad struct {
	steps []Step
}

// Append records a completed step.
func (s *Scratchpad) Append(step Step) {
	s.steps = append(s.steps, step)
}

// Len reports the number of completed steps.
func (s *Scratchpad) Len() int {
	return len(s.steps)
}

// Steps returns a copy of the recorded steps.
func (s *Scratchpad) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}
