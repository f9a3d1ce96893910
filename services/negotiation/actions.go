package negotiation

import "tailorlink/models"

// Action identifiers exposed to clients for rendering affordances.
const (
	ActionProposePrice       = "propose_price"
	ActionAcceptOffer        = "accept_offer"
	ActionRefuseOffer        = "refuse_offer"
	ActionProposeAppointment = "propose_appointment"
	ActionConfirmAppointment = "confirm_appointment"
	ActionRefuseAppointment  = "refuse_appointment"
	ActionCancelAppointment  = "cancel_appointment"
	ActionStartWork          = "start_work"
	ActionMarkCompleted      = "mark_completed"
	ActionPay                = "pay"
)

// noAppointment keys table rows where no live appointment exists.
const noAppointment = ""

type actionKey struct {
	role        string
	offerStatus string
	apptStatus  string
}

// actionTable is derived directly from the state-machine edges. It is
// consulted for rendering and fast rejection only; every transition
// re-validates role and source state inside its conditional write.
var actionTable = map[actionKey][]string{
	// Client.
	{models.RoleClient, models.OfferStatusPending, noAppointment}:   {ActionAcceptOffer, ActionRefuseOffer},
	{models.RoleClient, models.OfferStatusConfirmed, noAppointment}: {ActionProposeAppointment},
	{models.RoleClient, models.OfferStatusConfirmed, models.AppointmentStatusPending}:     {ActionCancelAppointment},
	{models.RoleClient, models.OfferStatusConfirmed, models.AppointmentStatusConfirmed}:   {ActionCancelAppointment},
	{models.RoleClient, models.OfferStatusConfirmed, models.AppointmentStatusWaitPayment}: {ActionPay},
	{models.RoleClient, models.OfferStatusConfirmed, models.AppointmentStatusPaymentConfirmed}: {},

	// Provider. Re-pricing stays legal until an appointment exists.
	{models.RoleProvider, models.OfferStatusPending, noAppointment}:   {ActionProposePrice},
	{models.RoleProvider, models.OfferStatusConfirmed, noAppointment}: {ActionProposePrice},
	{models.RoleProvider, models.OfferStatusConfirmed, models.AppointmentStatusPending}:    {ActionConfirmAppointment, ActionRefuseAppointment, ActionCancelAppointment},
	{models.RoleProvider, models.OfferStatusConfirmed, models.AppointmentStatusConfirmed}:  {ActionStartWork, ActionCancelAppointment},
	{models.RoleProvider, models.OfferStatusConfirmed, models.AppointmentStatusInProgress}: {ActionMarkCompleted},
	{models.RoleProvider, models.OfferStatusConfirmed, models.AppointmentStatusPaymentConfirmed}: {},
}

// LegalActionsFor returns the actions the given role may take against the
// offer and its live appointment (nil when none). A dismissed appointment
// counts as absent, so the offer may be re-scheduled after a cancel or
// refusal; a settled one stays present with no actions for anyone.
func LegalActionsFor(role string, offer *models.Offer, appt *models.Appointment) []string {
	if offer == nil {
		return nil
	}
	apptStatus := noAppointment
	if appt != nil && !appt.IsDismissed() {
		apptStatus = appt.Status
	}
	actions := actionTable[actionKey{role: role, offerStatus: offer.Status, apptStatus: apptStatus}]
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}
