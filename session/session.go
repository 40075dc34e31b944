// Package session holds the mutable per-session state: the
// credential, at most one pipeline run per kind, and the conversation
// transcript. It is the only shared state between the engines.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/store"
)

// Greeting is the initial assistant turn every transcript starts with.
const Greeting = "Hi, I'm Astrid. Tell me what you want to build and we'll take it from a rough thought to something deployable."

var (
	// ErrRunInFlight is returned when a run of the same kind is
	// already running. Callers re-submit after it finishes.
	ErrRunInFlight = errors.New("a run of this pipeline is already in flight")

	// ErrStaleRun is returned when a goroutine from a superseded run
	// tries to write state. The write is discarded.
	ErrStaleRun = errors.New("run superseded by a newer run")
)

// Session is the explicit context object threaded through every
// engine call. Constructed once per process.
type Session struct {
	mu       sync.Mutex
	settings store.Store // may be nil; credential then lives in memory only

	credential string
	runs       map[domain.PipelineKind]*domain.PipelineRun
	turns      []domain.Turn
	nextTurnID int64
	signal     domain.SignalLevel
	generation uint64
}

// New creates a session, loading the persisted credential if a
// settings store is supplied. An absent stored credential is not an
// error.
func New(ctx context.Context, settings store.Store) (*Session, error) {
	s := &Session{
		settings: settings,
		runs:     make(map[domain.PipelineKind]*domain.PipelineRun),
		signal:   domain.SignalStable,
	}
	s.appendTurnLocked(domain.RoleAssistant, Greeting)

	if settings != nil {
		credential, err := settings.GetSetting(ctx, store.KeyAPICredential)
		if err != nil {
			return nil, fmt.Errorf("failed to load credential: %w", err)
		}
		s.credential = credential
	}

	return s, nil
}

// Credential returns the current credential, "" when unset. Calls
// already in flight keep whatever credential they captured at start.
func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// SetCredential stores the credential and persists it. It takes
// effect on the next invocation.
func (s *Session) SetCredential(ctx context.Context, credential string) error {
	if s.settings != nil {
		if err := s.settings.PutSetting(ctx, store.KeyAPICredential, credential); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.credential = credential
	s.mu.Unlock()
	return nil
}

// ClearCredential removes the credential from memory and from the
// settings store.
func (s *Session) ClearCredential(ctx context.Context) error {
	if s.settings != nil {
		if err := s.settings.DeleteSetting(ctx, store.KeyAPICredential); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.credential = ""
	s.mu.Unlock()
	return nil
}

// Turns returns a copy of the transcript.
func (s *Session) Turns() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AppendTurn appends a turn and returns it.
func (s *Session) AppendTurn(role domain.Role, content string) domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendTurnLocked(role, content)
}

func (s *Session) appendTurnLocked(role domain.Role, content string) domain.Turn {
	s.nextTurnID++
	turn := domain.Turn{
		ID:        s.nextTurnID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.turns = append(s.turns, turn)
	return turn
}

// ResetTranscript truncates the transcript to the greeting turn.
func (s *Session) ResetTranscript() domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = s.turns[:1]
	s.signal = domain.SignalStable
	return s.turns[0]
}

// Signal returns the current stability signal.
func (s *Session) Signal() domain.SignalLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signal
}

// SetSignal updates the stability signal.
func (s *Session) SetSignal(signal domain.SignalLevel) {
	s.mu.Lock()
	s.signal = signal
	s.mu.Unlock()
}

// BeginRun registers a fresh run for the kind, replacing any finished
// run. A kind that is still running is rejected with ErrRunInFlight.
// The returned snapshot carries the generation the run's goroutine
// must present on every subsequent write.
func (s *Session) BeginRun(kind domain.PipelineKind, runID string, stageNames []string) (domain.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.runs[kind]; ok && existing.Status == domain.RunStatusRunning {
		return domain.PipelineRun{}, ErrRunInFlight
	}

	s.generation++
	run := &domain.PipelineRun{
		RunID:        runID,
		Kind:         kind,
		Generation:   s.generation,
		StageNames:   append([]string(nil), stageNames...),
		CurrentIndex: 0,
		Outputs:      make(map[string]any),
		Status:       domain.RunStatusRunning,
		StartedAt:    time.Now(),
	}
	s.runs[kind] = run
	return snapshot(run), nil
}

// AdvanceStage records a completed stage output and moves the index
// forward.
func (s *Session) AdvanceStage(kind domain.PipelineKind, generation uint64, stageName string, output any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.currentLocked(kind, generation)
	if err != nil {
		return err
	}
	run.Outputs[stageName] = output
	run.CurrentIndex++
	return nil
}

// FailRun marks the run failed at the given stage index. Partial
// outputs are discarded; a partial bundle is not independently useful.
func (s *Session) FailRun(kind domain.PipelineKind, generation uint64, index int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.currentLocked(kind, generation)
	if err != nil {
		return err
	}
	now := time.Now()
	run.Status = domain.RunStatusFailed
	run.CurrentIndex = index
	run.Outputs = make(map[string]any)
	run.Error = message
	run.EndedAt = &now
	return nil
}

// CompleteRun marks the run succeeded and returns its final snapshot.
func (s *Session) CompleteRun(kind domain.PipelineKind, generation uint64) (domain.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.currentLocked(kind, generation)
	if err != nil {
		return domain.PipelineRun{}, err
	}
	now := time.Now()
	run.Status = domain.RunStatusSucceeded
	run.EndedAt = &now
	return snapshot(run), nil
}

// Run returns a snapshot of the current run for the kind.
func (s *Session) Run(kind domain.PipelineKind) (domain.PipelineRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[kind]
	if !ok {
		return domain.PipelineRun{}, false
	}
	return snapshot(run), true
}

func (s *Session) currentLocked(kind domain.PipelineKind, generation uint64) (*domain.PipelineRun, error) {
	run, ok := s.runs[kind]
	if !ok || run.Generation != generation {
		return nil, ErrStaleRun
	}
	return run, nil
}

func snapshot(run *domain.PipelineRun) domain.PipelineRun {
	out := *run
	out.StageNames = append([]string(nil), run.StageNames...)
	out.Outputs = make(map[string]any, len(run.Outputs))
	for k, v := range run.Outputs {
		out.Outputs[k] = v
	}
	return out
}
