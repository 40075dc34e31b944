package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/or4cl3ai/arch1tech/artifact"
	"github.com/or4cl3ai/arch1tech/domain"
	"github.com/or4cl3ai/arch1tech/pipeline"
)

// DownloadAgentSpec serves the generated agent spec as a JSON file.
// GET /v1/pipelines/agent/artifact
func (h *Handler) DownloadAgentSpec(c echo.Context) error {
	run, ok := h.sess.Run(domain.PipelineKindAgent)
	if !ok || run.Status != domain.RunStatusSucceeded {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no completed agent run"})
	}

	spec, ok := run.Outputs[pipeline.StageAgentSpec].(*domain.AgentSpec)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "agent run has no spec output"})
	}

	file, err := artifact.AgentSpecFile(spec)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return serveFile(c, file)
}

// DownloadBundleFile serves one entry of the completed model build
// bundle as a named text file.
// GET /v1/pipelines/llm_build/artifacts/:name
func (h *Handler) DownloadBundleFile(c echo.Context) error {
	run, ok := h.sess.Run(domain.PipelineKindLLMBuild)
	if !ok || run.Status != domain.RunStatusSucceeded {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no completed model build run"})
	}

	bundle, ok := pipeline.AssembleBundle(run.Outputs).(*domain.ModelBuildBundle)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "model build run has no bundle"})
	}

	file, err := artifact.BundleFile(bundle, c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return serveFile(c, file)
}

func serveFile(c echo.Context, file artifact.ExportFile) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, []byte(file.Content))
}
