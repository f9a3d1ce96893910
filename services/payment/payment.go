package payment

import (
	"context"
	"errors"
	"math"

	"tailorlink/config"
	"tailorlink/database/repository"
	appointmentRepo "tailorlink/database/repository/appointment"
	offerRepo "tailorlink/database/repository/offer"
	"tailorlink/models"
	"tailorlink/services/negotiation"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Service is the bridge to the external payment collaborator. It only starts
// captures; completion comes back asynchronously through the webhook, which
// drives the negotiation engine's ConfirmPayment.
type Service interface {
	CreateIntent(ctx context.Context, actorID string, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error)
}

// StripePaymentService creates PaymentIntents for appointments awaiting
// payment.
type StripePaymentService struct {
	Appointments appointmentRepo.AppointmentRepository
	Offers       offerRepo.OfferRepository
	Logger       *zap.Logger
}

// CreateIntent starts a capture for the amount due on a WaitPayment
// appointment. Only the client of the appointment may pay.
func (s *StripePaymentService) CreateIntent(ctx context.Context, actorID string, req models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	appt, err := s.Appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &negotiation.Error{Code: negotiation.CodeNotFound, Message: "appointment not found"}
		}
		return nil, err
	}
	if appt.ClientID != actorID {
		return nil, &negotiation.Error{Code: negotiation.CodeUnauthorized, Message: "only the client may pay for this appointment"}
	}
	if appt.Status != models.AppointmentStatusWaitPayment {
		return nil, &negotiation.Error{Code: negotiation.CodeIllegalTransition, Message: "appointment is not awaiting payment"}
	}

	offer, err := s.Offers.GetByID(ctx, appt.OfferID)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = config.AppConfig.PaymentCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(offer.Price * 100))),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("appointment_id", appt.ID)
	params.AddMetadata("offer_id", appt.OfferID)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.Logger.Error("failed to create payment intent",
			zap.String("appointmentID", appt.ID), zap.Error(err))
		return nil, err
	}

	s.Logger.Info("payment intent created",
		zap.String("appointmentID", appt.ID),
		zap.String("intentID", intent.ID))

	return &models.PaymentIntentResponse{
		AppointmentID: appt.ID,
		IntentID:      intent.ID,
		ClientSecret:  intent.ClientSecret,
		Amount:        offer.Price,
		Currency:      currency,
	}, nil
}
