package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/pipeline"
	"github.com/or4cl3ai/arch1tech/session"
)

// StartRun starts a fresh pipeline run and returns its initial
// snapshot. Events stream over the WebSocket endpoint; the snapshot
// endpoint serves polling consumers.
// POST /v1/pipelines/:kind/runs
func (h *Handler) StartRun(c echo.Context) error {
	kind := domain.PipelineKind(c.Param("kind"))
	def, ok := h.definitions[kind]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown pipeline kind"})
	}

	var in pipeline.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := validateInput(kind, in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// The run outlives this request; each completion call is bounded
	// by the client's own timeout.
	events, run, err := h.engine.Run(context.Background(), h.sess, def, in)
	if err != nil {
		if errors.Is(err, session.ErrRunInFlight) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	go h.forwardEvents(events)

	return c.JSON(http.StatusAccepted, run)
}

// GetRun returns the current run snapshot for a pipeline kind.
// GET /v1/pipelines/:kind/run
func (h *Handler) GetRun(c echo.Context) error {
	kind := domain.PipelineKind(c.Param("kind"))
	if !kind.Valid() {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown pipeline kind"})
	}

	run, ok := h.sess.Run(kind)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no run for this pipeline"})
	}
	return c.JSON(http.StatusOK, run)
}

func (h *Handler) forwardEvents(events <-chan domain.PipelineEvent) {
	for evt := range events {
		if h.hub != nil {
			h.hub.Broadcast(evt)
		}
	}
}

func validateInput(kind domain.PipelineKind, in pipeline.Input) error {
	switch kind {
	case domain.PipelineKindAgent:
		if in.Idea == "" {
			return errors.New("idea is required")
		}
	case domain.PipelineKindLLMBuild:
		if in.ModelName == "" {
			return errors.New("model_name is required")
		}
		if in.Description == "" {
			return errors.New("description is required")
		}
	}
	return nil
}
