package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type chatMessageRequest struct {
	Content string `json:"content"`
}

// SendChatMessage sends a user turn through the conversation engine.
// Failures surface inside the transcript, so this endpoint only fails
// on malformed requests.
// POST /v1/chat/messages
func (h *Handler) SendChatMessage(c echo.Context) error {
	var req chatMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	turns, signal := h.chat.SendTurn(c.Request().Context(), h.sess, req.Content)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"turns":  turns,
		"signal": signal,
	})
}

// ResetChat truncates the transcript to the greeting turn.
// POST /v1/chat/reset
func (h *Handler) ResetChat(c echo.Context) error {
	turns := h.chat.Reset(h.sess)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"turns": turns,
	})
}

// GetTranscript returns the current transcript and signal.
// GET /v1/chat/transcript
func (h *Handler) GetTranscript(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"turns":  h.sess.Turns(),
		"signal": h.sess.Signal(),
	})
}
