package negotiation

import (
	"context"
	"testing"

	"tailorlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeAppointmentRequiresConfirmedOffer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	_, err := env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-09-10", "14:30")
	assert.True(t, IsCode(err, CodeIllegalTransition))
}

func TestProposeAppointmentValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.confirmedOffer(ctx, 100)

	_, err := env.svc.ProposeAppointment(ctx, testClientID, offerID, "", "14:30")
	assert.True(t, IsCode(err, CodeValidation))
	_, err = env.svc.ProposeAppointment(ctx, testClientID, offerID, "10/09/2026", "14:30")
	assert.True(t, IsCode(err, CodeValidation))
	_, err = env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-09-10", "2pm")
	assert.True(t, IsCode(err, CodeValidation))

	_, err = env.svc.ProposeAppointment(ctx, testProviderID, offerID, "2026-09-10", "14:30")
	assert.True(t, IsCode(err, CodeUnauthorized), "only the client schedules")
}

func TestProposeAppointmentCreatesPendingSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.confirmedOffer(ctx, 100)

	view, err := env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-09-10", "14:30")
	require.NoError(t, err)
	require.NotNil(t, view.Appointment)
	assert.Equal(t, models.AppointmentStatusPending, view.Appointment.Status)
	assert.Equal(t, "2026-09-10", view.Appointment.Date)
	assert.Equal(t, "14:30", view.Appointment.Time)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Appointment proposed for 2026-09-10 at 14:30", payload.ThreadText)
	assert.Equal(t, testProviderID, payload.NotifyID)
}

func TestProposeAppointmentRejectsSecondLiveSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID, apptID := env.pendingAppointment(ctx, 100)

	_, err := env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-09-12", "09:00")
	assert.True(t, IsCode(err, CodeDuplicateAppointment))

	// After the provider refuses, the client may try another slot.
	_, err = env.svc.RefuseAppointment(ctx, testProviderID, apptID)
	require.NoError(t, err)
	view, err := env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-09-12", "09:00")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPending, view.Appointment.Status)
}

func TestConfirmAppointmentProviderOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 100)

	_, err := env.svc.ConfirmAppointment(ctx, testClientID, apptID)
	assert.True(t, IsCode(err, CodeUnauthorized))

	view, err := env.svc.ConfirmAppointment(ctx, testProviderID, apptID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, view.Appointment.Status)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Appointment confirmed for 2026-09-10 at 14:30", payload.ThreadText)
	assert.Equal(t, testClientID, payload.NotifyID)
}

func TestCancelAppointmentRequiresReason(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 100)

	_, err := env.svc.CancelAppointment(ctx, testClientID, apptID, "")
	assert.True(t, IsCode(err, CodeValidation))
}

func TestCancelAppointmentByEitherParty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 100)

	view, err := env.svc.CancelAppointment(ctx, testProviderID, apptID, "double booked")
	require.NoError(t, err)
	assert.Nil(t, view.Appointment, "a cancelled slot leaves the live view")

	appt, err := env.appts.GetByID(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, appt.Status)
	assert.Equal(t, "double booked", appt.CancelReason)
	assert.Equal(t, testProviderID, appt.CancelledBy)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Appointment cancelled: double booked", payload.ThreadText)
	assert.Equal(t, testClientID, payload.NotifyID, "the other party gets notified")
}

func TestWorkLifecycleToPayment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 240)

	_, err := env.svc.StartWork(ctx, testProviderID, apptID)
	assert.True(t, IsCode(err, CodeIllegalTransition), "work cannot start on a pending slot")

	_, err = env.svc.ConfirmAppointment(ctx, testProviderID, apptID)
	require.NoError(t, err)

	view, err := env.svc.StartWork(ctx, testProviderID, apptID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusInProgress, view.Appointment.Status)

	view, err = env.svc.MarkCompleted(ctx, testProviderID, apptID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusWaitPayment, view.Appointment.Status)
	assert.Equal(t, "Mission completed, amount due: 240.00", env.emitter.lastTransition().ThreadText)

	require.NoError(t, env.svc.ConfirmPayment(ctx, apptID))
	appt, err := env.appts.GetByID(ctx, apptID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPaymentConfirmed, appt.Status)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Payment confirmed, amount: 240.00", payload.ThreadText)
	assert.Equal(t, testProviderID, payload.NotifyID)
}

func TestSettledOfferStaysClosed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID, apptID := env.pendingAppointment(ctx, 180)

	_, err := env.svc.ConfirmAppointment(ctx, testProviderID, apptID)
	require.NoError(t, err)
	_, err = env.svc.StartWork(ctx, testProviderID, apptID)
	require.NoError(t, err)
	_, err = env.svc.MarkCompleted(ctx, testProviderID, apptID)
	require.NoError(t, err)
	require.NoError(t, env.svc.ConfirmPayment(ctx, apptID))

	// The settled appointment keeps the offer's slot: no second slot, no
	// re-pricing of a paid deal.
	_, err = env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-10-01", "10:00")
	assert.True(t, IsCode(err, CodeDuplicateAppointment))
	_, err = env.svc.ProposePrice(ctx, testProviderID, offerID, 999)
	assert.True(t, IsCode(err, CodeIllegalTransition))

	view, err := env.svc.GetView(ctx, testClientID, offerID)
	require.NoError(t, err)
	require.NotNil(t, view.Appointment)
	assert.Equal(t, models.AppointmentStatusPaymentConfirmed, view.Appointment.Status)
	assert.Empty(t, view.Actions)
}

func TestConfirmPaymentOnlyWhileWaiting(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 100)

	err := env.svc.ConfirmPayment(ctx, apptID)
	assert.True(t, IsCode(err, CodeIllegalTransition))

	err = env.svc.ConfirmPayment(ctx, "missing")
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestConfirmDetectsConcurrentCancel(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 100)

	env.appts.beforeWrite = func() {
		env.appts.appts[apptID].Status = models.AppointmentStatusCancelled
		env.appts.appts[apptID].Version++
	}

	_, err := env.svc.ConfirmAppointment(ctx, testProviderID, apptID)
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeStateConflict))
}

func TestTransitionEmissionIsVersionKeyed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, apptID := env.pendingAppointment(ctx, 100)

	_, err := env.svc.ConfirmAppointment(ctx, testProviderID, apptID)
	require.NoError(t, err)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "appointment:"+apptID+":v2", payload.TransitionID)
	assert.Equal(t, models.ChangeKindAppointment, payload.Kind)
	assert.Equal(t, int64(2), payload.Version)
}
