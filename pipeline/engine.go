// Package pipeline runs ordered stage sequences that turn free-text
// input into structured build artifacts through sequential completion
// calls.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/llmclient"
	"github.com/or4cl3ai/arch1tech/session"
)

// Input carries the user-supplied fields a pipeline builds its
// requests from. Pipelines read only the fields they need.
type Input struct {
	Idea        string `json:"idea,omitempty"`
	ModelName   string `json:"model_name,omitempty"`
	BaseModel   string `json:"base_model,omitempty"`
	Description string `json:"description,omitempty"`
}

// Stage is one named step of a pipeline: exactly one completion call
// producing one named output. Stages are immutable and executed
// strictly in order.
type Stage struct {
	Name         string
	BuildRequest func(in Input, outputs map[string]any) llmclient.CompletionRequest
	HandleResult func(ctx context.Context, raw string) (any, error) // nil: raw text passes through
}

// Definition is an ordered stage sequence plus the final bundle
// assembly for one pipeline kind.
type Definition struct {
	Kind     domain.PipelineKind
	Stages   []Stage
	Assemble func(outputs map[string]any) any
}

// StageNames returns the display labels in execution order.
func (d Definition) StageNames() []string {
	names := make([]string, len(d.Stages))
	for i, s := range d.Stages {
		names[i] = s.Name
	}
	return names
}

// Engine drives pipeline runs against the completion client.
type Engine struct {
	client llmclient.Completer
}

// New creates a pipeline engine.
func New(client llmclient.Completer) *Engine {
	return &Engine{client: client}
}

// Run starts a fresh run of the definition and returns its event
// stream. The channel receives one stage_started/stage_completed pair
// per stage, then exactly one terminal event, and is closed. A run of
// the same kind still in flight is rejected with ErrRunInFlight; the
// credential is captured once at start so later credential changes do
// not affect this run.
func (e *Engine) Run(ctx context.Context, sess *session.Session, def Definition, in Input) (<-chan domain.PipelineEvent, domain.PipelineRun, error) {
	credential := sess.Credential()

	runID := "run_" + uuid.New().String()[:8]
	run, err := sess.BeginRun(def.Kind, runID, def.StageNames())
	if err != nil {
		return nil, domain.PipelineRun{}, err
	}

	events := make(chan domain.PipelineEvent, len(def.Stages)*2+1)
	go e.execute(ctx, sess, def, in, run, credential, events)

	return events, run, nil
}

func (e *Engine) execute(ctx context.Context, sess *session.Session, def Definition, in Input, run domain.PipelineRun, credential string, events chan<- domain.PipelineEvent) {
	defer close(events)

	outputs := make(map[string]any, len(def.Stages))

	for i, stage := range def.Stages {
		events <- e.event(run, domain.PipelineEvent{
			Type:  domain.EventTypeStageStarted,
			Index: i,
			Stage: stage.Name,
		})

		raw, err := e.client.Complete(ctx, credential, stage.BuildRequest(in, outputs))
		if err != nil {
			e.fail(sess, run, events, i, stage.Name, err)
			return
		}

		output := any(raw)
		if stage.HandleResult != nil {
			output, err = stage.HandleResult(ctx, raw)
			if err != nil {
				e.fail(sess, run, events, i, stage.Name, err)
				return
			}
		}

		outputs[stage.Name] = output
		if err := sess.AdvanceStage(run.Kind, run.Generation, stage.Name, output); err != nil {
			log.Printf("WARN: run %s discarded: %v", run.RunID, err)
			return
		}

		events <- e.event(run, domain.PipelineEvent{
			Type:   domain.EventTypeStageCompleted,
			Index:  i,
			Stage:  stage.Name,
			Output: output,
		})
	}

	bundle := any(outputs)
	if def.Assemble != nil {
		bundle = def.Assemble(outputs)
	}

	if _, err := sess.CompleteRun(run.Kind, run.Generation); err != nil {
		log.Printf("WARN: run %s discarded: %v", run.RunID, err)
		return
	}

	events <- e.event(run, domain.PipelineEvent{
		Type:   domain.EventTypePipelineSucceeded,
		Index:  len(def.Stages),
		Bundle: bundle,
	})
}

// fail marks the run failed and emits the terminal event. A single
// stage failure aborts the whole run; partial outputs are discarded.
func (e *Engine) fail(sess *session.Session, run domain.PipelineRun, events chan<- domain.PipelineEvent, index int, stageName string, cause error) {
	if err := sess.FailRun(run.Kind, run.Generation, index, cause.Error()); err != nil {
		log.Printf("WARN: run %s discarded: %v", run.RunID, err)
		return
	}
	log.Printf("ERROR: pipeline %s failed at stage %s: %v", run.Kind, stageName, cause)
	events <- e.event(run, domain.PipelineEvent{
		Type:  domain.EventTypePipelineFailed,
		Index: index,
		Stage: stageName,
		Error: cause.Error(),
	})
}

func (e *Engine) event(run domain.PipelineRun, evt domain.PipelineEvent) domain.PipelineEvent {
	evt.Kind = run.Kind
	evt.RunID = run.RunID
	evt.Ts = time.Now().UnixMilli()
	return evt
}
