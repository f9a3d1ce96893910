package negotiation

import (
	"context"
	"testing"

	"tailorlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetViewAuthorization(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	view, err := env.svc.GetView(ctx, testClientID, offerID)
	require.NoError(t, err)
	assert.Equal(t, offerID, view.Offer.ID)

	_, err = env.svc.GetView(ctx, "stranger", offerID)
	assert.True(t, IsCode(err, CodeUnauthorized))
}

func TestViewVersionTracksNewestRecord(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID, apptID := env.pendingAppointment(ctx, 100)

	// Offer at v2 (accept), appointment at v1.
	view, err := env.svc.GetView(ctx, testClientID, offerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Version)

	// Confirm and start bump the appointment past the offer.
	_, err = env.svc.ConfirmAppointment(ctx, testProviderID, apptID)
	require.NoError(t, err)
	view, err = env.svc.StartWork(ctx, testProviderID, apptID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.Appointment.Version)
	assert.Equal(t, int64(3), view.Version)
}

func TestPostMessageAppendsAndSignals(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	msg, err := env.svc.PostMessage(ctx, testClientID, offerID, "can you do it in linen?")
	require.NoError(t, err)
	assert.Equal(t, testClientID, msg.AuthorID)
	assert.False(t, msg.IsSystem)
	assert.NotEmpty(t, msg.ID)

	last := env.emitter.changes[len(env.emitter.changes)-1]
	assert.Equal(t, models.ChangeKindThread, last.Kind)
	assert.Equal(t, offerID, last.OfferID)
}

func TestPostMessageRejections(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	_, err := env.svc.PostMessage(ctx, testClientID, offerID, "")
	assert.True(t, IsCode(err, CodeValidation))
	_, err = env.svc.PostMessage(ctx, "stranger", offerID, "hi")
	assert.True(t, IsCode(err, CodeUnauthorized))
	_, err = env.svc.PostMessage(ctx, testClientID, "missing", "hi")
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestViewIncludesThreadPageNewestFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	_, err := env.svc.PostMessage(ctx, testClientID, offerID, "first")
	require.NoError(t, err)
	_, err = env.svc.PostMessage(ctx, testProviderID, offerID, "second")
	require.NoError(t, err)

	view, err := env.svc.GetView(ctx, testClientID, offerID)
	require.NoError(t, err)
	require.Len(t, view.Messages, 2)
	assert.Equal(t, "second", view.Messages[0].Text)
	assert.Equal(t, "first", view.Messages[1].Text)
}
