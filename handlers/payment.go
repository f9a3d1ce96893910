package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"tailorlink/config"
	"tailorlink/models"
	"tailorlink/services/negotiation"
	"tailorlink/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// PaymentHandler bridges Stripe and the negotiation engine: the client
// starts a capture here, Stripe reports completion on the webhook.
type PaymentHandler struct {
	Payments    payment.Service
	Negotiation negotiation.Service
	Logger      *zap.Logger
}

func NewPaymentHandler(payments payment.Service, neg negotiation.Service, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Negotiation: neg, Logger: logger}
}

// CreateIntent handles POST /api/payments/intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.Payments.CreateIntent(c.Request.Context(), partyID(c), req)
	if err != nil {
		respondNegotiationError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Webhook handles Stripe's asynchronous capture reports. A succeeded intent
// carrying our appointment metadata drives ConfirmPayment; everything else
// is acknowledged and ignored.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload,
		c.GetHeader("Stripe-Signature"),
		config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("rejected webhook with bad signature", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type != "payment_intent.succeeded" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.Logger.Error("failed to parse payment intent from webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	appointmentID := intent.Metadata["appointment_id"]
	if appointmentID == "" {
		// Not one of ours.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.Negotiation.ConfirmPayment(c.Request.Context(), appointmentID); err != nil {
		// An already-confirmed appointment is a webhook retry, not a failure.
		if negotiation.IsCode(err, negotiation.CodeIllegalTransition) {
			h.Logger.Info("ignoring duplicate payment confirmation",
				zap.String("appointmentID", appointmentID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.Logger.Error("failed to confirm payment",
			zap.String("appointmentID", appointmentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
