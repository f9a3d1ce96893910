package negotiation

import (
	"context"

	appointmentRepo "tailorlink/database/repository/appointment"
	offerRepo "tailorlink/database/repository/offer"
	partyRepo "tailorlink/database/repository/party"
	threadRepo "tailorlink/database/repository/thread"
	"tailorlink/models"

	"go.uber.org/zap"
)

// Service is the negotiation engine: every offer/appointment transition goes
// through here. Each mutating call commits a single conditional write, then
// fans out its side effects through the emitter; on success the caller gets
// the fresh composite view.
type Service interface {
	// Offer sub-machine.
	CreateOffer(ctx context.Context, actorID string, in models.CreateOfferInput) (*models.CompositeView, error)
	ProposePrice(ctx context.Context, actorID, offerID string, price float64) (*models.CompositeView, error)
	AcceptOffer(ctx context.Context, actorID, offerID string) (*models.CompositeView, error)
	RefuseOffer(ctx context.Context, actorID, offerID string) (*models.CompositeView, error)

	// Appointment sub-machine.
	ProposeAppointment(ctx context.Context, actorID, offerID, date, timeOfDay string) (*models.CompositeView, error)
	ConfirmAppointment(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error)
	RefuseAppointment(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error)
	CancelAppointment(ctx context.Context, actorID, appointmentID, reason string) (*models.CompositeView, error)
	StartWork(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error)
	MarkCompleted(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error)

	// ConfirmPayment is driven by the payment collaborator, never by a party.
	ConfirmPayment(ctx context.Context, appointmentID string) error

	// Read side.
	LegalActions(ctx context.Context, actorID, offerID string) ([]string, error)
	GetView(ctx context.Context, actorID, offerID string) (*models.CompositeView, error)
	PostMessage(ctx context.Context, actorID, offerID, text string) (*models.ThreadMessage, error)
}

// DefaultNegotiationService implements Service on the Mongo repositories.
type DefaultNegotiationService struct {
	Offers       offerRepo.OfferRepository
	Appointments appointmentRepo.AppointmentRepository
	Thread       threadRepo.ThreadRepository
	Parties      partyRepo.PartyRepository
	Emitter      TransitionEmitter
	Logger       *zap.Logger
}

// roleOf resolves the actor's role on an offer. Role never comes from the
// token alone; it is always re-derived from the record being acted on.
func roleOf(offer *models.Offer, actorID string) string {
	switch actorID {
	case offer.ClientID:
		return models.RoleClient
	case offer.ProviderID:
		return models.RoleProvider
	}
	return ""
}

// displayName resolves a party's display name for notification bodies,
// falling back to a neutral label when the directory lookup fails.
func (s *DefaultNegotiationService) displayName(ctx context.Context, partyID string) string {
	party, err := s.Parties.GetByID(ctx, partyID)
	if err != nil || party.DisplayName == "" {
		return "Your counterpart"
	}
	return party.DisplayName
}
