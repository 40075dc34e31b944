// Package llmclient provides the client for the external chat
// completion service.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message is a single chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes one completion call. At least one of
// SystemInstruction and UserContent must be non-empty.
type CompletionRequest struct {
	Model             string
	SystemInstruction string
	PriorTurns        []Message
	UserContent       string
	Temperature       float64
	StructuredOutput  bool
}

// Completer is the interface engines depend on. The credential is
// passed per call so in-flight calls keep the credential they started
// with.
type Completer interface {
	Complete(ctx context.Context, credential string, req CompletionRequest) (string, error)
}

// Client calls the completion service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure Client implements Completer.
var _ Completer = (*Client)(nil)

// NewClient creates a new completion client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Complete sends a single chat completion request and returns the
// first reply's text. It never retries; every error is terminal for
// the call and classified as AuthError, ServiceError, TransportError
// or MalformedResponseError.
func (c *Client) Complete(ctx context.Context, credential string, req CompletionRequest) (string, error) {
	if credential == "" {
		return "", &AuthError{}
	}
	if req.SystemInstruction == "" && req.UserContent == "" {
		return "", fmt.Errorf("completion request has no content")
	}

	wireReq := chatCompletionRequest{
		Model:       req.Model,
		Messages:    buildMessages(req),
		Temperature: req.Temperature,
	}
	if req.StructuredOutput {
		wireReq.ResponseFormat = map[string]string{"type": "json_object"}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &MalformedResponseError{Reason: "body is not valid JSON"}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return "", &MalformedResponseError{Reason: "no reply content in choices"}
	}

	return result.Choices[0].Message.Content, nil
}

// buildMessages lays out the wire message list: system instruction
// first, then prior turns, then the user content as the final message.
func buildMessages(req CompletionRequest) []Message {
	messages := make([]Message, 0, len(req.PriorTurns)+2)
	if req.SystemInstruction != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, req.PriorTurns...)
	if req.UserContent != "" {
		messages = append(messages, Message{Role: "user", Content: req.UserContent})
	}
	return messages
}
