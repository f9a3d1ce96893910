package negotiation

import (
	"context"
	"errors"
	"fmt"

	"tailorlink/database/repository"
	"tailorlink/models"
)

// offerTransitionID builds the idempotency key of one committed offer
// transition.
func offerTransitionID(offerID string, version int64) string {
	return fmt.Sprintf("offer:%s:v%d", offerID, version)
}

// CreateOffer opens a negotiation: the provider proposes an initial price for
// the client's request.
func (s *DefaultNegotiationService) CreateOffer(ctx context.Context, actorID string, in models.CreateOfferInput) (*models.CompositeView, error) {
	if in.Price <= 0 {
		return nil, newError(CodeValidation, "price must be positive, got %.2f", in.Price)
	}
	if in.ClientID == "" || in.RequestID == "" {
		return nil, newError(CodeValidation, "client_id and request_id are required")
	}
	if in.ClientID == actorID {
		return nil, newError(CodeValidation, "provider cannot open an offer with themselves")
	}

	offer := &models.Offer{
		ClientID:   in.ClientID,
		ProviderID: actorID,
		RequestID:  in.RequestID,
		Price:      in.Price,
	}
	if err := s.Offers.Create(ctx, offer); err != nil {
		return nil, err
	}

	msg := msgOfferCreated(s.displayName(ctx, actorID), offer.Price)
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: offerTransitionID(offer.ID, offer.Version),
		OfferID:      offer.ID,
		ThreadText:   msg.ThreadText,
		NotifyID:     offer.ClientID,
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": "offer_created", "offerId": offer.ID},
		Kind:         models.ChangeKindOffer,
		Version:      offer.Version,
	})

	return s.buildView(ctx, models.RoleProvider, offer)
}

// ProposePrice re-prices the offer. Legal for the provider while the offer is
// Pending, or Confirmed without a live appointment (the price freezes once a
// slot is on the table).
func (s *DefaultNegotiationService) ProposePrice(ctx context.Context, actorID, offerID string, price float64) (*models.CompositeView, error) {
	if price <= 0 {
		return nil, newError(CodeValidation, "price must be positive, got %.2f", price)
	}

	offer, err := s.loadOfferFor(ctx, actorID, offerID, models.RoleProvider, ActionProposePrice)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusPending && offer.Status != models.OfferStatusConfirmed {
		return nil, newError(CodeIllegalTransition, "cannot change price while offer is %s", offer.Status)
	}
	if offer.Status == models.OfferStatusConfirmed {
		appt, err := s.Appointments.GetLiveByOfferID(ctx, offerID)
		if err != nil {
			return nil, err
		}
		if appt != nil {
			return nil, newError(CodeIllegalTransition, "cannot change price once an appointment exists")
		}
	}

	oldPrice := offer.Price
	updated, err := s.Offers.UpdatePrice(ctx, offerID, []string{offer.Status}, price)
	if err != nil {
		return nil, s.offerWriteError(ctx, offerID, err)
	}

	msg := msgPriceChanged(s.displayName(ctx, actorID), oldPrice, price)
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: offerTransitionID(offerID, updated.Version),
		OfferID:      offerID,
		ThreadText:   msg.ThreadText,
		NotifyID:     updated.ClientID,
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": "price_changed", "offerId": offerID},
		Kind:         models.ChangeKindOffer,
		Version:      updated.Version,
	})

	return s.buildView(ctx, models.RoleProvider, updated)
}

// AcceptOffer moves a Pending offer to Confirmed. Client only.
func (s *DefaultNegotiationService) AcceptOffer(ctx context.Context, actorID, offerID string) (*models.CompositeView, error) {
	offer, err := s.loadOfferFor(ctx, actorID, offerID, models.RoleClient, ActionAcceptOffer)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusPending {
		return nil, newError(CodeIllegalTransition, "cannot accept an offer that is %s", offer.Status)
	}

	updated, err := s.Offers.TransitionStatus(ctx, offerID,
		[]string{models.OfferStatusPending}, models.OfferStatusConfirmed)
	if err != nil {
		return nil, s.offerWriteError(ctx, offerID, err)
	}

	msg := msgOfferAccepted(s.displayName(ctx, actorID), updated.Price)
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: offerTransitionID(offerID, updated.Version),
		OfferID:      offerID,
		ThreadText:   msg.ThreadText,
		NotifyID:     updated.ProviderID,
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": "offer_accepted", "offerId": offerID},
		Kind:         models.ChangeKindOffer,
		Version:      updated.Version,
	})

	return s.buildView(ctx, models.RoleClient, updated)
}

// RefuseOffer moves a Pending offer to Refused. Client only, terminal.
func (s *DefaultNegotiationService) RefuseOffer(ctx context.Context, actorID, offerID string) (*models.CompositeView, error) {
	offer, err := s.loadOfferFor(ctx, actorID, offerID, models.RoleClient, ActionRefuseOffer)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusPending {
		return nil, newError(CodeIllegalTransition, "cannot refuse an offer that is %s", offer.Status)
	}

	updated, err := s.Offers.TransitionStatus(ctx, offerID,
		[]string{models.OfferStatusPending}, models.OfferStatusRefused)
	if err != nil {
		return nil, s.offerWriteError(ctx, offerID, err)
	}

	msg := msgOfferRefused(s.displayName(ctx, actorID))
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: offerTransitionID(offerID, updated.Version),
		OfferID:      offerID,
		ThreadText:   msg.ThreadText,
		NotifyID:     updated.ProviderID,
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": "offer_refused", "offerId": offerID},
		Kind:         models.ChangeKindOffer,
		Version:      updated.Version,
	})

	return s.buildView(ctx, models.RoleClient, updated)
}

// loadOfferFor fetches the offer and checks the actor holds the required
// role on it. Wrong party entirely and wrong role both reject as
// unauthorized before any state inspection.
func (s *DefaultNegotiationService) loadOfferFor(ctx context.Context, actorID, offerID, requiredRole, action string) (*models.Offer, error) {
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "offer %s not found", offerID)
		}
		return nil, err
	}
	role := roleOf(offer, actorID)
	if role == "" {
		return nil, newError(CodeUnauthorized, "actor %s is not a party to offer %s", actorID, offerID)
	}
	if role != requiredRole {
		return nil, newError(CodeUnauthorized, "%s may not %s", role, action)
	}
	return offer, nil
}

// offerWriteError maps a failed conditional write: the record moved between
// the legality check and the commit (StateConflict), or vanished entirely.
func (s *DefaultNegotiationService) offerWriteError(ctx context.Context, offerID string, err error) error {
	if !errors.Is(err, repository.ErrNoMatch) {
		return err
	}
	current, readErr := s.Offers.GetByID(ctx, offerID)
	if readErr != nil {
		return newError(CodeNotFound, "offer %s not found", offerID)
	}
	return newError(CodeStateConflict, "offer %s moved to %s concurrently", offerID, current.Status)
}
