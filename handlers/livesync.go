package handlers

import (
	"net/http"

	"tailorlink/services/livesync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 16 * 1024,
}

// LiveViewHandler upgrades a party's connection and streams composite view
// snapshots for one offer until the socket closes.
type LiveViewHandler struct {
	Hub    *livesync.Hub
	Logger *zap.Logger
}

func NewLiveViewHandler(hub *livesync.Hub, logger *zap.Logger) *LiveViewHandler {
	return &LiveViewHandler{Hub: hub, Logger: logger}
}

// Subscribe handles GET /api/offers/:id/live.
func (h *LiveViewHandler) Subscribe(c *gin.Context) {
	offerID := c.Param("id")
	party := partyID(c)

	sub, err := h.Hub.Subscribe(c.Request.Context(), offerID, party)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Hub.Unsubscribe(sub)
		h.Logger.Error("failed to upgrade the websocket", zap.Error(err))
		return
	}
	defer ws.Close()
	h.Logger.Info("live view client connected",
		zap.String("offerID", offerID), zap.String("partyID", party))

	// Read loop only detects disconnects; subscribers never send.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.Hub.Unsubscribe(sub)
			h.Logger.Info("live view client disconnected",
				zap.String("offerID", offerID), zap.String("partyID", party))
			return
		case view, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := ws.WriteJSON(view); err != nil {
				h.Hub.Unsubscribe(sub)
				h.Logger.Info("live view write failed, dropping subscriber",
					zap.String("offerID", offerID), zap.Error(err))
				return
			}
		}
	}
}
