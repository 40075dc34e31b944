package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/or4cl3ai/arch1tech/api"
	"github.com/or4cl3ai/arch1tech/config"
	"github.com/or4cl3ai/arch1tech/conversation"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/llmclient"
	"github.com/or4cl3ai/arch1tech/pipeline"
	"github.com/or4cl3ai/arch1tech/session"
)

type fixture struct {
	handler *api.Handler
	sess    *session.Session
	client  *llmclient.ScriptedClient
	echo    *echo.Echo
}

func newFixture(t *testing.T, replies ...llmclient.ScriptedReply) *fixture {
	t.Helper()

	cfg := &config.Config{
		Model:              "gpt-test",
		ExtractTemperature: 0.2,
		BuildTemperature:   0.7,
		ChatTemperature:    0.9,
		Persona:            config.DefaultPersona,
	}

	sess, err := session.New(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, sess.SetCredential(context.Background(), "sk-test"))

	client := llmclient.NewScriptedClient(replies...)
	definitions := map[domain.PipelineKind]pipeline.Definition{
		domain.PipelineKindAgent:    pipeline.AgentDefinition(cfg, nil),
		domain.PipelineKindLLMBuild: pipeline.LLMBuildDefinition(cfg),
	}

	return &fixture{
		handler: api.NewHandler(cfg, sess, pipeline.New(client), conversation.New(client, cfg), nil, definitions),
		sess:    sess,
		client:  client,
		echo:    echo.New(),
	}
}

func (f *fixture) request(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, f.echo.NewContext(req, rec)
}

func (f *fixture) waitForRun(t *testing.T, kind domain.PipelineKind) domain.PipelineRun {
	t.Helper()
	var run domain.PipelineRun
	require.Eventually(t, func() bool {
		snapshot, ok := f.sess.Run(kind)
		if !ok || snapshot.Status == domain.RunStatusRunning {
			return false
		}
		run = snapshot
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return run
}

func TestCredentialEndpoints(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.ClearCredential(context.Background()))

	rec, c := f.request(http.MethodGet, "/v1/credential", nil)
	require.NoError(t, f.handler.GetCredential(c))
	assert.JSONEq(t, `{"configured":false}`, rec.Body.String())

	rec, c = f.request(http.MethodPut, "/v1/credential", map[string]string{"token": "sk-new"})
	require.NoError(t, f.handler.PutCredential(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sk-new", f.sess.Credential())
	// The token is never echoed back.
	assert.NotContains(t, rec.Body.String(), "sk-new")

	rec, c = f.request(http.MethodPut, "/v1/credential", map[string]string{"token": ""})
	require.NoError(t, f.handler.PutCredential(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = f.request(http.MethodDelete, "/v1/credential", nil)
	require.NoError(t, f.handler.DeleteCredential(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", f.sess.Credential())
}

func TestStartRunValidation(t *testing.T) {
	f := newFixture(t)

	rec, c := f.request(http.MethodPost, "/v1/pipelines/spaceship/runs", map[string]string{})
	c.SetPath("/v1/pipelines/:kind/runs")
	c.SetParamNames("kind")
	c.SetParamValues("spaceship")
	require.NoError(t, f.handler.StartRun(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, c = f.request(http.MethodPost, "/v1/pipelines/agent/runs", map[string]string{})
	c.SetPath("/v1/pipelines/:kind/runs")
	c.SetParamNames("kind")
	c.SetParamValues("agent")
	require.NoError(t, f.handler.StartRun(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "idea is required")
}

func TestStartRunConflict(t *testing.T) {
	f := newFixture(t)
	_, err := f.sess.BeginRun(domain.PipelineKindAgent, "run_busy", []string{pipeline.StageAgentSpec})
	require.NoError(t, err)

	rec, c := f.request(http.MethodPost, "/v1/pipelines/agent/runs", map[string]string{"idea": "x"})
	c.SetPath("/v1/pipelines/:kind/runs")
	c.SetParamNames("kind")
	c.SetParamValues("agent")
	require.NoError(t, f.handler.StartRun(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAgentRunOverHTTP(t *testing.T) {
	reply := `{"agentName":"PRSummarizer","agentType":"Monitoring","systemPrompt":"You summarize PRs.","capabilities":["fetch PRs","summarize"]}`
	f := newFixture(t, llmclient.ScriptedReply{Text: reply})

	rec, c := f.request(http.MethodPost, "/v1/pipelines/agent/runs", map[string]string{"idea": "build me a daily PR summarizer"})
	c.SetPath("/v1/pipelines/:kind/runs")
	c.SetParamNames("kind")
	c.SetParamValues("agent")
	require.NoError(t, f.handler.StartRun(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	run := f.waitForRun(t, domain.PipelineKindAgent)
	assert.Equal(t, domain.RunStatusSucceeded, run.Status)

	// Snapshot endpoint reflects the finished run.
	rec, c = f.request(http.MethodGet, "/v1/pipelines/agent/run", nil)
	c.SetPath("/v1/pipelines/:kind/run")
	c.SetParamNames("kind")
	c.SetParamValues("agent")
	require.NoError(t, f.handler.GetRun(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUCCEEDED")

	// And the spec downloads as a JSON attachment.
	rec, c = f.request(http.MethodGet, "/v1/pipelines/agent/artifact", nil)
	require.NoError(t, f.handler.DownloadAgentSpec(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "agent_spec.json")
	assert.Contains(t, rec.Body.String(), "PRSummarizer")
}

func TestBundleDownloads(t *testing.T) {
	f := newFixture(t,
		llmclient.ScriptedReply{Text: "the system prompt"},
		llmclient.ScriptedReply{Text: "print('train')"},
		llmclient.ScriptedReply{Text: `{"prompt":"a","completion":"b"}`},
		llmclient.ScriptedReply{Text: "# Model Card"},
	)

	// No completed run yet: downloads 404.
	rec, c := f.request(http.MethodGet, "/v1/pipelines/llm_build/artifacts/model_card", nil)
	c.SetPath("/v1/pipelines/llm_build/artifacts/:name")
	c.SetParamNames("name")
	c.SetParamValues("model_card")
	require.NoError(t, f.handler.DownloadBundleFile(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, c = f.request(http.MethodPost, "/v1/pipelines/llm_build/runs", map[string]string{
		"model_name":  "orac-1",
		"base_model":  "tinyllama",
		"description": "answers support tickets",
	})
	c.SetPath("/v1/pipelines/:kind/runs")
	c.SetParamNames("kind")
	c.SetParamValues("llm_build")
	require.NoError(t, f.handler.StartRun(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	run := f.waitForRun(t, domain.PipelineKindLLMBuild)
	require.Equal(t, domain.RunStatusSucceeded, run.Status)

	rec, c = f.request(http.MethodGet, "/v1/pipelines/llm_build/artifacts/model_card", nil)
	c.SetPath("/v1/pipelines/llm_build/artifacts/:name")
	c.SetParamNames("name")
	c.SetParamValues("model_card")
	require.NoError(t, f.handler.DownloadBundleFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "MODEL_CARD.md")
	assert.Equal(t, "# Model Card", rec.Body.String())

	rec, c = f.request(http.MethodGet, "/v1/pipelines/llm_build/artifacts/nope", nil)
	c.SetPath("/v1/pipelines/llm_build/artifacts/:name")
	c.SetParamNames("name")
	c.SetParamValues("nope")
	require.NoError(t, f.handler.DownloadBundleFile(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatEndpoints(t *testing.T) {
	f := newFixture(t, llmclient.ScriptedReply{Text: "Sounds buildable."})

	rec, c := f.request(http.MethodPost, "/v1/chat/messages", map[string]string{"content": "I want a PR summarizer"})
	require.NoError(t, f.handler.SendChatMessage(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Turns  []domain.Turn      `json:"turns"`
		Signal domain.SignalLevel `json:"signal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Turns, 3)
	assert.Equal(t, "Sounds buildable.", resp.Turns[2].Content)
	assert.Equal(t, domain.SignalStable, resp.Signal)

	rec, c = f.request(http.MethodPost, "/v1/chat/reset", nil)
	require.NoError(t, f.handler.ResetChat(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = f.request(http.MethodGet, "/v1/chat/transcript", nil)
	require.NoError(t, f.handler.GetTranscript(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Turns, 1)
	assert.Equal(t, session.Greeting, resp.Turns[0].Content)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, c := f.request(http.MethodGet, "/health", nil)
	require.NoError(t, f.handler.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
