package rpc

// RunRequest starts one agent run.
type RunRequest struct {
	RunID    string `json:"run_id,omitempty"`
	Variant  string `json:"variant,omitempty"` // "" = daemon default
	Question string `json:"question"`
}

// RunEvent streams back progress from the daemon: one "step" event per
// completed loop iteration, then a terminal "answer" or "error" event
// followed by "done".
type RunEvent struct {
	Type        string `json:"type"` // step|answer|error|done
	RunID       string `json:"run_id,omitempty"`
	Step        int    `json:"step,omitempty"`
	Thought     string `json:"thought,omitempty"`
	Tool        string `json:"tool,omitempty"`
	Input       string `json:"input,omitempty"`
	Observation string `json:"observation,omitempty"`
	Answer      string `json:"answer,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"` // parse|dispatch|tool|iteration_limit|cancelled|internal
	Done        bool   `json:"done,omitempty"`
}

// ToolInfo describes one registered tool for the catalog endpoint.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VariantCatalog lists the tools one hosted variant exposes.
type VariantCatalog struct {
	Variant string     `json:"variant"`
	Tools   []ToolInfo `json:"tools"`
}

// RunStreamRequest is the bidirectional stream payload for Connect RPC.
// The first message must contain the Run payload; subsequent messages can
// carry control signals.
type RunStreamRequest struct {
	Run    *RunRequest `json:"run,omitempty"`
	Cancel bool        `json:"cancel,omitempty"`
	RunID  string      `json:"run_id,omitempty"`
}
