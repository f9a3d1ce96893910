package handlers

import (
	partyRepoPkg "tailorlink/database/repository/party"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	PartyRepo partyRepoPkg.PartyRepository

	// Offer endpoints
	CreateOfferHandler  gin.HandlerFunc
	ProposePriceHandler gin.HandlerFunc
	AcceptOfferHandler  gin.HandlerFunc
	RefuseOfferHandler  gin.HandlerFunc
	GetViewHandler      gin.HandlerFunc
	LegalActionsHandler gin.HandlerFunc
	LiveViewHandler     gin.HandlerFunc
	ProposeAppointment  gin.HandlerFunc

	// Appointment endpoints
	ConfirmAppointment gin.HandlerFunc
	RefuseAppointment  gin.HandlerFunc
	CancelAppointment  gin.HandlerFunc
	StartWork          gin.HandlerFunc
	MarkCompleted      gin.HandlerFunc

	// Thread endpoints
	ListMessagesHandler gin.HandlerFunc
	PostMessageHandler  gin.HandlerFunc

	// Payment endpoints
	CreateIntentHandler  gin.HandlerFunc
	StripeWebhookHandler gin.HandlerFunc
}
