package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tailorlink/database/repository"
	"tailorlink/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func appointmentTransitionID(appointmentID string, version int64) string {
	return fmt.Sprintf("appointment:%s:v%d", appointmentID, version)
}

// ProposeAppointment creates the appointment in Pending state. Client only,
// offer must be Confirmed, and no live appointment may exist — the partial
// unique index backs that check even under racing proposals.
func (s *DefaultNegotiationService) ProposeAppointment(ctx context.Context, actorID, offerID, date, timeOfDay string) (*models.CompositeView, error) {
	if date == "" || timeOfDay == "" {
		return nil, newError(CodeValidation, "date and time are required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, newError(CodeValidation, "date must be formatted %s", dateLayout)
	}
	if _, err := time.Parse(timeLayout, timeOfDay); err != nil {
		return nil, newError(CodeValidation, "time must be formatted %s", timeLayout)
	}

	offer, err := s.loadOfferFor(ctx, actorID, offerID, models.RoleClient, ActionProposeAppointment)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusConfirmed {
		return nil, newError(CodeIllegalTransition, "cannot schedule while offer is %s", offer.Status)
	}
	existing, err := s.Appointments.GetLiveByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(CodeDuplicateAppointment, "offer %s already has a live appointment", offerID)
	}

	appt := &models.Appointment{
		OfferID:    offerID,
		ClientID:   offer.ClientID,
		ProviderID: offer.ProviderID,
		Date:       date,
		Time:       timeOfDay,
	}
	if err := s.Appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrDuplicateLive) {
			return nil, newError(CodeDuplicateAppointment, "offer %s already has a live appointment", offerID)
		}
		return nil, err
	}

	msg := msgAppointmentProposed(s.displayName(ctx, actorID), date, timeOfDay)
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: appointmentTransitionID(appt.ID, appt.Version),
		OfferID:      offerID,
		ThreadText:   msg.ThreadText,
		NotifyID:     offer.ProviderID,
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": "appointment_proposed", "offerId": offerID, "appointmentId": appt.ID},
		Kind:         models.ChangeKindAppointment,
		Version:      appt.Version,
	})

	return s.buildView(ctx, models.RoleClient, offer)
}

// ConfirmAppointment: provider accepts the proposed slot.
func (s *DefaultNegotiationService) ConfirmAppointment(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error) {
	return s.transitionAppointment(ctx, appointmentTransition{
		actorID:       actorID,
		appointmentID: appointmentID,
		requiredRole:  models.RoleProvider,
		action:        ActionConfirmAppointment,
		from:          []string{models.AppointmentStatusPending},
		to:            models.AppointmentStatusConfirmed,
		message: func(s *DefaultNegotiationService, ctx context.Context, appt *models.Appointment, _ *models.Offer) systemMessage {
			return msgAppointmentConfirmed(s.displayName(ctx, appt.ProviderID), appt.Date, appt.Time)
		},
		notifyID: func(appt *models.Appointment) string { return appt.ClientID },
		dataType: "appointment_confirmed",
	})
}

// RefuseAppointment: provider rejects the proposed slot. Terminal for the
// appointment; the client may propose another.
func (s *DefaultNegotiationService) RefuseAppointment(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error) {
	return s.transitionAppointment(ctx, appointmentTransition{
		actorID:       actorID,
		appointmentID: appointmentID,
		requiredRole:  models.RoleProvider,
		action:        ActionRefuseAppointment,
		from:          []string{models.AppointmentStatusPending},
		to:            models.AppointmentStatusRefused,
		message: func(s *DefaultNegotiationService, ctx context.Context, appt *models.Appointment, _ *models.Offer) systemMessage {
			return msgAppointmentRefused(s.displayName(ctx, appt.ProviderID))
		},
		notifyID: func(appt *models.Appointment) string { return appt.ClientID },
		dataType: "appointment_refused",
	})
}

// CancelAppointment: either party, from Pending or Confirmed, with a
// mandatory reason. Records who cancelled.
func (s *DefaultNegotiationService) CancelAppointment(ctx context.Context, actorID, appointmentID, reason string) (*models.CompositeView, error) {
	if reason == "" {
		return nil, newError(CodeValidation, "cancel reason is required")
	}
	return s.transitionAppointment(ctx, appointmentTransition{
		actorID:       actorID,
		appointmentID: appointmentID,
		action:        ActionCancelAppointment,
		from:          []string{models.AppointmentStatusPending, models.AppointmentStatusConfirmed},
		to:            models.AppointmentStatusCancelled,
		extra:         map[string]interface{}{"cancel_reason": reason, "cancelled_by": actorID},
		message: func(s *DefaultNegotiationService, ctx context.Context, appt *models.Appointment, _ *models.Offer) systemMessage {
			return msgAppointmentCancelled(s.displayName(ctx, actorID), reason)
		},
		notifyID: func(appt *models.Appointment) string {
			if actorID == appt.ClientID {
				return appt.ProviderID
			}
			return appt.ClientID
		},
		dataType: "appointment_cancelled",
	})
}

// StartWork: provider marks the job underway.
func (s *DefaultNegotiationService) StartWork(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error) {
	return s.transitionAppointment(ctx, appointmentTransition{
		actorID:       actorID,
		appointmentID: appointmentID,
		requiredRole:  models.RoleProvider,
		action:        ActionStartWork,
		from:          []string{models.AppointmentStatusConfirmed},
		to:            models.AppointmentStatusInProgress,
		message: func(s *DefaultNegotiationService, ctx context.Context, appt *models.Appointment, _ *models.Offer) systemMessage {
			return msgWorkStarted(s.displayName(ctx, appt.ProviderID))
		},
		notifyID: func(appt *models.Appointment) string { return appt.ClientID },
		dataType: "work_started",
	})
}

// MarkCompleted: provider declares the job done; the appointment now waits
// for the client's payment.
func (s *DefaultNegotiationService) MarkCompleted(ctx context.Context, actorID, appointmentID string) (*models.CompositeView, error) {
	return s.transitionAppointment(ctx, appointmentTransition{
		actorID:       actorID,
		appointmentID: appointmentID,
		requiredRole:  models.RoleProvider,
		action:        ActionMarkCompleted,
		from:          []string{models.AppointmentStatusInProgress},
		to:            models.AppointmentStatusWaitPayment,
		message: func(s *DefaultNegotiationService, ctx context.Context, appt *models.Appointment, offer *models.Offer) systemMessage {
			return msgWorkCompleted(s.displayName(ctx, appt.ProviderID), offer.Price)
		},
		notifyID: func(appt *models.Appointment) string { return appt.ClientID },
		dataType: "work_completed",
	})
}

// ConfirmPayment is invoked by the payment collaborator once capture
// succeeds. Not reachable from any party-facing endpoint.
func (s *DefaultNegotiationService) ConfirmPayment(ctx context.Context, appointmentID string) error {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeNotFound, "appointment %s not found", appointmentID)
		}
		return err
	}
	if appt.Status != models.AppointmentStatusWaitPayment {
		return newError(CodeIllegalTransition, "cannot confirm payment while appointment is %s", appt.Status)
	}

	offer, err := s.Offers.GetByID(ctx, appt.OfferID)
	if err != nil {
		return err
	}

	updated, err := s.Appointments.TransitionStatus(ctx, appointmentID,
		[]string{models.AppointmentStatusWaitPayment}, models.AppointmentStatusPaymentConfirmed, nil)
	if err != nil {
		return s.appointmentWriteError(ctx, appointmentID, err)
	}

	msg := msgPaymentConfirmed(offer.Price)
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: appointmentTransitionID(appointmentID, updated.Version),
		OfferID:      appt.OfferID,
		ThreadText:   msg.ThreadText,
		NotifyID:     appt.ProviderID,
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": "payment_confirmed", "offerId": appt.OfferID, "appointmentId": appointmentID},
		Kind:         models.ChangeKindAppointment,
		Version:      updated.Version,
	})
	return nil
}

// appointmentTransition describes one edge of the appointment sub-machine.
type appointmentTransition struct {
	actorID       string
	appointmentID string
	requiredRole  string // empty means either party
	action        string
	from          []string
	to            string
	extra         map[string]interface{}
	message       func(s *DefaultNegotiationService, ctx context.Context, appt *models.Appointment, offer *models.Offer) systemMessage
	notifyID      func(appt *models.Appointment) string
	dataType      string
}

// transitionAppointment runs the shared legality check + conditional write +
// emission sequence for appointment edges.
func (s *DefaultNegotiationService) transitionAppointment(ctx context.Context, t appointmentTransition) (*models.CompositeView, error) {
	appt, err := s.Appointments.GetByID(ctx, t.appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "appointment %s not found", t.appointmentID)
		}
		return nil, err
	}

	var role string
	switch t.actorID {
	case appt.ClientID:
		role = models.RoleClient
	case appt.ProviderID:
		role = models.RoleProvider
	default:
		return nil, newError(CodeUnauthorized, "actor %s is not a party to appointment %s", t.actorID, t.appointmentID)
	}
	if t.requiredRole != "" && role != t.requiredRole {
		return nil, newError(CodeUnauthorized, "%s may not %s", role, t.action)
	}

	legal := false
	for _, status := range t.from {
		if appt.Status == status {
			legal = true
			break
		}
	}
	if !legal {
		return nil, newError(CodeIllegalTransition, "cannot %s while appointment is %s", t.action, appt.Status)
	}

	offer, err := s.Offers.GetByID(ctx, appt.OfferID)
	if err != nil {
		return nil, err
	}

	updated, err := s.Appointments.TransitionStatus(ctx, t.appointmentID, t.from, t.to, t.extra)
	if err != nil {
		return nil, s.appointmentWriteError(ctx, t.appointmentID, err)
	}

	msg := t.message(s, ctx, updated, offer)
	s.Emitter.EmitTransition(ctx, models.SideEffectPayload{
		TransitionID: appointmentTransitionID(t.appointmentID, updated.Version),
		OfferID:      appt.OfferID,
		ThreadText:   msg.ThreadText,
		NotifyID:     t.notifyID(updated),
		NotifyTitle:  msg.NotifyTitle,
		NotifyBody:   msg.NotifyBody,
		Data:         map[string]string{"type": t.dataType, "offerId": appt.OfferID, "appointmentId": t.appointmentID},
		Kind:         models.ChangeKindAppointment,
		Version:      updated.Version,
	})

	return s.buildView(ctx, role, offer)
}

// appointmentWriteError mirrors offerWriteError for the appointment record.
func (s *DefaultNegotiationService) appointmentWriteError(ctx context.Context, appointmentID string, err error) error {
	if !errors.Is(err, repository.ErrNoMatch) {
		return err
	}
	current, readErr := s.Appointments.GetByID(ctx, appointmentID)
	if readErr != nil {
		return newError(CodeNotFound, "appointment %s not found", appointmentID)
	}
	return newError(CodeStateConflict, "appointment %s moved to %s concurrently", appointmentID, current.Status)
}
