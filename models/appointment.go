package models

import "time"

// Appointment statuses.
const (
	AppointmentStatusPending          = "Pending"
	AppointmentStatusConfirmed        = "Confirmed"
	AppointmentStatusRefused          = "Refused"
	AppointmentStatusCancelled        = "Cancelled"
	AppointmentStatusInProgress       = "InProgress"
	AppointmentStatusWaitPayment      = "WaitPayment"
	AppointmentStatusPaymentConfirmed = "PaymentConfirmed"
)

// LiveAppointmentStatuses are the statuses that occupy an offer's single
// appointment slot: everything except a refusal or cancellation. A settled
// (PaymentConfirmed) appointment keeps the slot, so a paid deal can never be
// re-scheduled or re-priced. At most one appointment in any of these states
// may exist per offer; the partial unique index on the appointments
// collection enforces that.
var LiveAppointmentStatuses = []string{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
	AppointmentStatusWaitPayment,
	AppointmentStatusPaymentConfirmed,
}

// Appointment is the scheduled execution slot for a confirmed offer.
type Appointment struct {
	ID           string    `bson:"id" json:"id"`
	OfferID      string    `bson:"offer_id" json:"offer_id"`
	ClientID     string    `bson:"client_id" json:"client_id"`
	ProviderID   string    `bson:"provider_id" json:"provider_id"`
	Date         string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time         string    `bson:"time" json:"time"` // "HH:MM"
	Status       string    `bson:"status" json:"status"`
	CancelReason string    `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CancelledBy  string    `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	Version      int64     `bson:"version" json:"version"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// IsDismissed reports whether the appointment was refused or cancelled and
// no longer blocks a new proposal on its offer.
func (a *Appointment) IsDismissed() bool {
	switch a.Status {
	case AppointmentStatusRefused, AppointmentStatusCancelled:
		return true
	}
	return false
}
