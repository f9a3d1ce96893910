package negotiation

import (
	"context"
	"sync"
	"testing"

	"tailorlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOfferOpensPendingNegotiation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	view, err := env.svc.CreateOffer(ctx, testProviderID, models.CreateOfferInput{
		ClientID:  testClientID,
		RequestID: testRequestID,
		Price:     120,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OfferStatusPending, view.Offer.Status)
	assert.Equal(t, testClientID, view.Offer.ClientID)
	assert.Equal(t, testProviderID, view.Offer.ProviderID)
	assert.Equal(t, int64(1), view.Offer.Version)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Offer created at price 120.00", payload.ThreadText)
	assert.Equal(t, testClientID, payload.NotifyID)
	assert.Equal(t, "Marco sent you an offer of 120.00", payload.NotifyBody)
}

func TestCreateOfferValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.CreateOffer(ctx, testProviderID, models.CreateOfferInput{
		ClientID: testClientID, RequestID: testRequestID, Price: 0,
	})
	assert.True(t, IsCode(err, CodeValidation))

	_, err = env.svc.CreateOffer(ctx, testProviderID, models.CreateOfferInput{
		ClientID: testProviderID, RequestID: testRequestID, Price: 50,
	})
	assert.True(t, IsCode(err, CodeValidation), "self-dealing offer must be rejected")
}

func TestAcceptOfferConfirms(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 80)

	view, err := env.svc.AcceptOffer(ctx, testClientID, offerID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusConfirmed, view.Offer.Status)
	assert.Equal(t, int64(2), view.Offer.Version)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Offer accepted at price 80.00", payload.ThreadText)
	assert.Equal(t, testProviderID, payload.NotifyID)
}

func TestAcceptOfferRejectsProvider(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 80)

	_, err := env.svc.AcceptOffer(ctx, testProviderID, offerID)
	assert.True(t, IsCode(err, CodeUnauthorized))

	_, err = env.svc.AcceptOffer(ctx, "stranger", offerID)
	assert.True(t, IsCode(err, CodeUnauthorized))
}

func TestRefuseOfferIsTerminal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 80)

	view, err := env.svc.RefuseOffer(ctx, testClientID, offerID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRefused, view.Offer.Status)
	assert.Empty(t, view.Actions)

	_, err = env.svc.AcceptOffer(ctx, testClientID, offerID)
	assert.True(t, IsCode(err, CodeIllegalTransition))
	_, err = env.svc.ProposePrice(ctx, testProviderID, offerID, 99)
	assert.True(t, IsCode(err, CodeIllegalTransition))
}

func TestProposePriceRoundTrip(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	view, err := env.svc.ProposePrice(ctx, testProviderID, offerID, 85)
	require.NoError(t, err)
	assert.Equal(t, 85.0, view.Offer.Price)
	assert.Equal(t, models.OfferStatusPending, view.Offer.Status)

	payload := env.emitter.lastTransition()
	assert.Equal(t, "Price changed from 100.00 to 85.00", payload.ThreadText)

	// Re-pricing stays legal after confirmation while no slot exists.
	_, err = env.svc.AcceptOffer(ctx, testClientID, offerID)
	require.NoError(t, err)
	view, err = env.svc.ProposePrice(ctx, testProviderID, offerID, 90)
	require.NoError(t, err)
	assert.Equal(t, 90.0, view.Offer.Price)
}

func TestProposePriceFrozenByLiveAppointment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID, apptID := env.pendingAppointment(ctx, 100)

	_, err := env.svc.ProposePrice(ctx, testProviderID, offerID, 150)
	assert.True(t, IsCode(err, CodeIllegalTransition))

	// A cancelled slot unfreezes the price.
	_, err = env.svc.CancelAppointment(ctx, testClientID, apptID, "need another week")
	require.NoError(t, err)
	view, err := env.svc.ProposePrice(ctx, testProviderID, offerID, 150)
	require.NoError(t, err)
	assert.Equal(t, 150.0, view.Offer.Price)
}

func TestProposePriceRejectsClient(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	_, err := env.svc.ProposePrice(ctx, testClientID, offerID, 60)
	assert.True(t, IsCode(err, CodeUnauthorized))
}

func TestAcceptDetectsConcurrentRefusal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	// The competing refusal lands between the legality check and the
	// conditional write.
	env.offers.beforeWrite = func() {
		env.offers.offers[offerID].Status = models.OfferStatusRefused
		env.offers.offers[offerID].Version++
	}

	_, err := env.svc.AcceptOffer(ctx, testClientID, offerID)
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeStateConflict))
	assert.Contains(t, err.Error(), models.OfferStatusRefused)
}

func TestConcurrentAcceptRefuseSingleWinner(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	offerID := env.createOffer(ctx, 100)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = env.svc.AcceptOffer(ctx, testClientID, offerID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = env.svc.RefuseOffer(ctx, testClientID, offerID)
	}()
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		code := ErrorCode(err)
		assert.Contains(t, []string{CodeStateConflict, CodeIllegalTransition}, code)
	}
	assert.Equal(t, 1, winners, "exactly one of the racing transitions must commit")
}

func TestOfferNotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.AcceptOffer(ctx, testClientID, "missing")
	assert.True(t, IsCode(err, CodeNotFound))
	_, err = env.svc.GetView(ctx, testClientID, "missing")
	assert.True(t, IsCode(err, CodeNotFound))
}
