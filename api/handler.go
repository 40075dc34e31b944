// Package api provides the HTTP handlers for the builder service.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/or4cl3ai/arch1tech/config"
	"github.com/or4cl3ai/arch1tech/conversation"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/hub"
	"github.com/or4cl3ai/arch1tech/pipeline"
	"github.com/or4cl3ai/arch1tech/session"
)

// Handler handles HTTP requests.
type Handler struct {
	config      *config.Config
	sess        *session.Session
	engine      *pipeline.Engine
	chat        *conversation.Engine
	hub         *hub.Hub
	definitions map[domain.PipelineKind]pipeline.Definition
}

// NewHandler creates a new handler.
func NewHandler(cfg *config.Config, sess *session.Session, engine *pipeline.Engine, chat *conversation.Engine, h *hub.Hub, definitions map[domain.PipelineKind]pipeline.Definition) *Handler {
	return &Handler{
		config:      cfg,
		sess:        sess,
		engine:      engine,
		chat:        chat,
		hub:         h,
		definitions: definitions,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Credential
	e.PUT("/v1/credential", h.PutCredential)
	e.DELETE("/v1/credential", h.DeleteCredential)
	e.GET("/v1/credential", h.GetCredential)

	// Pipelines
	e.POST("/v1/pipelines/:kind/runs", h.StartRun)
	e.GET("/v1/pipelines/:kind/run", h.GetRun)

	// Artifact export
	e.GET("/v1/pipelines/agent/artifact", h.DownloadAgentSpec)
	e.GET("/v1/pipelines/llm_build/artifacts/:name", h.DownloadBundleFile)

	// Co-pilot chat
	e.POST("/v1/chat/messages", h.SendChatMessage)
	e.POST("/v1/chat/reset", h.ResetChat)
	e.GET("/v1/chat/transcript", h.GetTranscript)

	// Live pipeline events
	e.GET("/v1/events/ws", h.HandleWebSocket)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
