package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

type credentialRequest struct {
	Token string `json:"token"`
}

// PutCredential stores the API credential. The token itself is never
// echoed back.
// PUT /v1/credential
func (h *Handler) PutCredential(c echo.Context) error {
	var req credentialRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token is required"})
	}

	if err := h.sess.SetCredential(c.Request().Context(), req.Token); err != nil {
		log.Printf("ERROR: failed to store credential: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store credential"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"configured": true})
}

// DeleteCredential clears the stored credential.
// DELETE /v1/credential
func (h *Handler) DeleteCredential(c echo.Context) error {
	if err := h.sess.ClearCredential(c.Request().Context()); err != nil {
		log.Printf("ERROR: failed to clear credential: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to clear credential"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"configured": false})
}

// GetCredential reports whether a credential is configured.
// GET /v1/credential
func (h *Handler) GetCredential(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"configured": h.sess.Credential() != ""})
}
