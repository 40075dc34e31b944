package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local single-user tool; any origin may subscribe.
		return true
	},
}

// HandleWebSocket upgrades the connection and streams pipeline events
// to it until the client goes away.
// GET /v1/events/ws
func (h *Handler) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := h.hub.NewConnection(ws)
	h.hub.Register(conn)

	go conn.WritePump()

	// Consumers only listen; drain the read side to observe close.
	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				return
			}
		}
	}()

	return nil
}
