package negotiation

import (
	"context"
	"errors"
	"time"

	"tailorlink/database/repository"
	"tailorlink/models"

	"go.uber.org/zap"
)

// threadPageSize bounds the message suffix included in a composite view.
const threadPageSize = 50

// buildView assembles the composite projection for one role: offer, live
// appointment, newest thread slice and the legal actions. The thread read is
// best effort; an empty page never blocks a successful transition response.
func (s *DefaultNegotiationService) buildView(ctx context.Context, role string, offer *models.Offer) (*models.CompositeView, error) {
	appt, err := s.Appointments.GetLiveByOfferID(ctx, offer.ID)
	if err != nil {
		return nil, err
	}

	messages, err := s.Thread.ListByThread(ctx, offer.ID, threadPageSize)
	if err != nil {
		s.Logger.Warn("failed to load thread for view",
			zap.String("offerID", offer.ID), zap.Error(err))
		messages = nil
	}

	version := offer.Version
	if appt != nil && appt.Version > version {
		version = appt.Version
	}

	return &models.CompositeView{
		Offer:       offer,
		Appointment: appt,
		Messages:    messages,
		Actions:     LegalActionsFor(role, offer, appt),
		Version:     version,
		GeneratedAt: time.Now(),
	}, nil
}

// GetView returns the composite snapshot for the requesting party.
func (s *DefaultNegotiationService) GetView(ctx context.Context, actorID, offerID string) (*models.CompositeView, error) {
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
	return s.buildView(ctx, role, offer)
}

// LegalActions returns the set of action identifiers the actor may take.
func (s *DefaultNegotiationService) LegalActions(ctx context.Context, actorID, offerID string) ([]string, error) {
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
	appt, err := s.Appointments.GetLiveByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return LegalActionsFor(role, offer, appt), nil
}

// PostMessage appends an ordinary chat message to the offer's thread.
func (s *DefaultNegotiationService) PostMessage(ctx context.Context, actorID, offerID, text string) (*models.ThreadMessage, error) {
	if text == "" {
		return nil, newError(CodeValidation, "message text must not be empty")
	}
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "offer %s not found", offerID)
		}
		return nil, err
	}
	if roleOf(offer, actorID) == "" {
		return nil, newError(CodeUnauthorized, "actor %s is not a party to offer %s", actorID, offerID)
	}

	msg := &models.ThreadMessage{
		ThreadID: offerID,
		AuthorID: actorID,
		Text:     text,
	}
	if err := s.Thread.Append(ctx, msg); err != nil {
		return nil, err
	}

	s.Emitter.EmitChange(ctx, models.ChangeEvent{
		OfferID: offerID,
		Kind:    models.ChangeKindThread,
		Version: offer.Version,
	})
	return msg, nil
}
