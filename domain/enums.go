// Package domain defines the core domain models for the builder.
package domain

// PipelineKind identifies which build pipeline a run belongs to.
type PipelineKind string

const (
	PipelineKindAgent    PipelineKind = "agent"
	PipelineKindLLMBuild PipelineKind = "llm_build"
)

// Valid reports whether the kind is one of the known pipelines.
func (k PipelineKind) Valid() bool {
	return k == PipelineKindAgent || k == PipelineKindLLMBuild
}

// RunStatus represents the status of a pipeline run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "IDLE"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// EventType represents the type of a pipeline event.
type EventType string

const (
	EventTypeStageStarted      EventType = "stage_started"
	EventTypeStageCompleted    EventType = "stage_completed"
	EventTypePipelineFailed    EventType = "pipeline_failed"
	EventTypePipelineSucceeded EventType = "pipeline_succeeded"
)

// Role is the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SignalLevel is the cosmetic stability indicator shown next to the
// co-pilot. It carries no telemetry; the only invariant is membership
// in this set.
type SignalLevel string

const (
	SignalStable     SignalLevel = "stable"
	SignalMonitoring SignalLevel = "monitoring"
	SignalAlert      SignalLevel = "alert"
)
