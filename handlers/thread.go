package handlers

import (
	"net/http"
	"strconv"

	threadRepo "tailorlink/database/repository/thread"
	"tailorlink/services/negotiation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ThreadHandler serves the shared conversation of a negotiation.
type ThreadHandler struct {
	Svc    negotiation.Service
	Thread threadRepo.ThreadRepository
	Logger *zap.Logger
}

func NewThreadHandler(svc negotiation.Service, thread threadRepo.ThreadRepository, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{Svc: svc, Thread: thread, Logger: logger}
}

// ListMessages returns a page of the thread, newest first.
func (h *ThreadHandler) ListMessages(c *gin.Context) {
	offerID := c.Param("offerId")

	// Authorization rides on the view read.
	if _, err := h.Svc.GetView(c.Request.Context(), partyID(c), offerID); err != nil {
		respondNegotiationError(c, err)
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	messages, err := h.Thread.ListByThread(c.Request.Context(), offerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thread", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// PostMessage appends an ordinary chat message.
func (h *ThreadHandler) PostMessage(c *gin.Context) {
	var in struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	msg, err := h.Svc.PostMessage(c.Request.Context(), partyID(c), c.Param("offerId"), in.Text)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
