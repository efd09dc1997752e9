// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"

	"gongu-service/internal/middleware"
	"gongu-service/internal/pkg/response"
	ws "gongu-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard origins are enforced at the gateway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades authenticated sellers onto the dashboard push
// hub.
type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// HandleConnection runs behind the auth middleware; the session was already
// resolved by the time we upgrade.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	sellerID := middleware.MustGetSellerID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to upgrade connection", err)
		return
	}

	client := ws.NewClient(h.hub, conn, sellerID, h.logger)
	h.hub.Register(client)
	client.Start()
}
