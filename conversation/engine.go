// Package conversation maintains the multi-turn co-pilot transcript
// over the completion service.
package conversation

import (
	"context"
	"log"
	"math/rand"
	"strings"

	"github.com/or4cl3ai/arch1tech/config"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/llmclient"
	"github.com/or4cl3ai/arch1tech/session"
)

// MissingCredentialReply is the canned degraded-mode assistant turn
// appended when no credential is configured. It is a defined response,
// not a failure.
const MissingCredentialReply = "I can't reach the completion service yet. Add your API credential in settings and I'll be right with you."

// Engine appends turns to the session transcript and keeps the
// stability signal current.
type Engine struct {
	client      llmclient.Completer
	model       string
	temperature float64
	persona     string
	roll        func() float64
}

// New creates a conversation engine.
func New(client llmclient.Completer, cfg *config.Config) *Engine {
	return &Engine{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.ChatTemperature,
		persona:     cfg.Persona,
		roll:        rand.Float64,
	}
}

// WithRoll replaces the random source, for deterministic tests.
func (e *Engine) WithRoll(roll func() float64) *Engine {
	e.roll = roll
	return e
}

// SendTurn appends the user turn and the assistant's reply to the
// transcript and returns the updated transcript plus the stability
// signal. Empty input is a no-op. A missing credential yields the
// canned degraded-mode turn with zero network calls. A failed
// completion call is rendered as an assistant turn; the conversation
// stays usable.
func (e *Engine) SendTurn(ctx context.Context, sess *session.Session, text string) ([]domain.Turn, domain.SignalLevel) {
	text = strings.TrimSpace(text)
	if text == "" {
		return sess.Turns(), sess.Signal()
	}

	credential := sess.Credential()
	if credential == "" {
		sess.AppendTurn(domain.RoleAssistant, MissingCredentialReply)
		return sess.Turns(), sess.Signal()
	}

	// The user turn is visible before the reply arrives.
	prior := sess.Turns()
	sess.AppendTurn(domain.RoleUser, text)
	sess.SetSignal(DeriveSignal(OutcomePending, sess.Signal(), e.roll()))

	reply, err := e.client.Complete(ctx, credential, llmclient.CompletionRequest{
		Model:             e.model,
		SystemInstruction: e.persona,
		PriorTurns:        priorMessages(prior),
		UserContent:       text,
		Temperature:       e.temperature,
	})
	if err != nil {
		log.Printf("WARN: co-pilot completion failed: %v", err)
		sess.AppendTurn(domain.RoleAssistant, err.Error())
		sess.SetSignal(DeriveSignal(OutcomeFailed, sess.Signal(), 0))
		return sess.Turns(), sess.Signal()
	}

	sess.AppendTurn(domain.RoleAssistant, reply)
	sess.SetSignal(DeriveSignal(OutcomeSucceeded, sess.Signal(), 0))
	return sess.Turns(), sess.Signal()
}

// Reset truncates the transcript to the greeting turn.
func (e *Engine) Reset(sess *session.Session) []domain.Turn {
	sess.ResetTranscript()
	return sess.Turns()
}

func priorMessages(turns []domain.Turn) []llmclient.Message {
	messages := make([]llmclient.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, llmclient.Message{Role: string(t.Role), Content: t.Content})
	}
	return messages
}
