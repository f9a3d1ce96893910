package handlers

import (
	"net/http"

	"tailorlink/models"
	"tailorlink/services/negotiation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NegotiationHandler exposes the negotiation engine over HTTP. Every
// endpoint returns the fresh composite view on success.
type NegotiationHandler struct {
	Svc    negotiation.Service
	Logger *zap.Logger
}

func NewNegotiationHandler(svc negotiation.Service, logger *zap.Logger) *NegotiationHandler {
	return &NegotiationHandler{Svc: svc, Logger: logger}
}

// CreateOffer opens a negotiation with an initial price.
func (h *NegotiationHandler) CreateOffer(c *gin.Context) {
	var in models.CreateOfferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := h.Svc.CreateOffer(c.Request.Context(), partyID(c), in)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ProposePrice re-prices the offer.
func (h *NegotiationHandler) ProposePrice(c *gin.Context) {
	var in struct {
		Price float64 `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := h.Svc.ProposePrice(c.Request.Context(), partyID(c), c.Param("id"), in.Price)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AcceptOffer confirms the offer at the current price.
func (h *NegotiationHandler) AcceptOffer(c *gin.Context) {
	view, err := h.Svc.AcceptOffer(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RefuseOffer terminally refuses the offer.
func (h *NegotiationHandler) RefuseOffer(c *gin.Context) {
	view, err := h.Svc.RefuseOffer(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ProposeAppointment schedules a slot for a confirmed offer.
func (h *NegotiationHandler) ProposeAppointment(c *gin.Context) {
	var in struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := h.Svc.ProposeAppointment(c.Request.Context(), partyID(c), c.Param("id"), in.Date, in.Time)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ConfirmAppointment accepts the proposed slot.
func (h *NegotiationHandler) ConfirmAppointment(c *gin.Context) {
	view, err := h.Svc.ConfirmAppointment(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RefuseAppointment rejects the proposed slot.
func (h *NegotiationHandler) RefuseAppointment(c *gin.Context) {
	view, err := h.Svc.RefuseAppointment(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelAppointment cancels with a mandatory reason.
func (h *NegotiationHandler) CancelAppointment(c *gin.Context) {
	var in struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	view, err := h.Svc.CancelAppointment(c.Request.Context(), partyID(c), c.Param("id"), in.Reason)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// StartWork marks the job underway.
func (h *NegotiationHandler) StartWork(c *gin.Context) {
	view, err := h.Svc.StartWork(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MarkCompleted declares the job done; the appointment awaits payment.
func (h *NegotiationHandler) MarkCompleted(c *gin.Context) {
	view, err := h.Svc.MarkCompleted(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetView returns the composite snapshot for the requesting party.
func (h *NegotiationHandler) GetView(c *gin.Context) {
	view, err := h.Svc.GetView(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LegalActions returns the action identifiers the caller may use right now.
func (h *NegotiationHandler) LegalActions(c *gin.Context) {
	actions, err := h.Svc.LegalActions(c.Request.Context(), partyID(c), c.Param("id"))
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}
