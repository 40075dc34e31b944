package llmclient

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedReply is one canned outcome for the scripted client.
type ScriptedReply struct {
	Text string
	Err  error
}

// ScriptedClient is an in-process Completer that replays canned
// replies in order and records every request it receives. It is used
// by engine tests in place of the HTTP client.
type ScriptedClient struct {
	mu      sync.Mutex
	replies []ScriptedReply
	calls   []CompletionRequest
	creds   []string
}

// Ensure ScriptedClient implements Completer.
var _ Completer = (*ScriptedClient)(nil)

// NewScriptedClient creates a scripted client with the given replies.
func NewScriptedClient(replies ...ScriptedReply) *ScriptedClient {
	return &ScriptedClient{replies: replies}
}

// Complete pops the next scripted reply. Running out of replies is a
// test setup mistake and returns an error.
func (s *ScriptedClient) Complete(ctx context.Context, credential string, req CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, req)
	s.creds = append(s.creds, credential)

	if len(s.calls) > len(s.replies) {
		return "", fmt.Errorf("scripted client exhausted after %d replies", len(s.replies))
	}
	reply := s.replies[len(s.calls)-1]
	return reply.Text, reply.Err
}

// CallCount returns how many completion calls were issued.
func (s *ScriptedClient) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Calls returns a copy of the recorded requests.
func (s *ScriptedClient) Calls() []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CompletionRequest, len(s.calls))
	copy(out, s.calls)
	return out
}

// Credentials returns the credential each call was issued with.
func (s *ScriptedClient) Credentials() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.creds))
	copy(out, s.creds)
	return out
}
