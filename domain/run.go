package domain

import "time"

// PipelineRun represents one execution of an ordered stage sequence.
// At most one run exists per pipeline kind; starting a new run replaces
// the previous one.
type PipelineRun struct {
	RunID        string         `json:"run_id"`
	Kind         PipelineKind   `json:"kind"`
	Generation   uint64         `json:"-"`
	StageNames   []string       `json:"stage_names"`
	CurrentIndex int            `json:"current_index"`
	Outputs      map[string]any `json:"outputs,omitempty"`
	Status       RunStatus      `json:"status"`
	Error        string         `json:"error,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
}

// PipelineEvent is emitted by the stage pipeline engine as a run
// progresses. Exactly one of the terminal types (pipeline_failed,
// pipeline_succeeded) ends every run.
type PipelineEvent struct {
	Type   EventType    `json:"type"`
	Kind   PipelineKind `json:"kind"`
	RunID  string       `json:"run_id"`
	Index  int          `json:"index"`
	Stage  string       `json:"stage,omitempty"`
	Output any          `json:"output,omitempty"`
	Error  string       `json:"error,omitempty"`
	Bundle any          `json:"bundle,omitempty"`
	Ts     int64        `json:"ts"` // Unix milliseconds
}
