package negotiation

import (
	"context"
	"fmt"
	"sync"

	"tailorlink/database/repository"
	"tailorlink/models"

	"go.uber.org/zap"
)

// In-memory repositories mirroring the Mongo conditional-write contract:
// a transition whose source-status filter no longer matches returns
// repository.ErrNoMatch, and at most one live appointment may exist per offer.

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*models.Offer
	seq    int

	// beforeWrite, when set, runs inside the store lock ahead of the
	// conditional check. Tests use it to interleave a competing commit.
	beforeWrite func()
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]*models.Offer)}
}

func (r *fakeOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if offer.ID == "" {
		offer.ID = fmt.Sprintf("offer-%d", r.seq)
	}
	offer.Status = models.OfferStatusPending
	offer.Version = 1
	cp := *offer
	r.offers[offer.ID] = &cp
	return nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *offer
	return &cp, nil
}

func (r *fakeOfferRepo) TransitionStatus(ctx context.Context, id string, from []string, to string) (*models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beforeWrite != nil {
		hook := r.beforeWrite
		r.beforeWrite = nil
		hook()
	}
	offer, ok := r.offers[id]
	if !ok || !statusIn(offer.Status, from) {
		return nil, repository.ErrNoMatch
	}
	offer.Status = to
	offer.Version++
	cp := *offer
	return &cp, nil
}

func (r *fakeOfferRepo) UpdatePrice(ctx context.Context, id string, from []string, price float64) (*models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[id]
	if !ok || !statusIn(offer.Status, from) {
		return nil, repository.ErrNoMatch
	}
	offer.Price = price
	offer.Version++
	cp := *offer
	return &cp, nil
}

func (r *fakeOfferRepo) EnsureIndexes() error { return nil }

// setStatus force-writes a status, bypassing the conditional contract.
func (r *fakeOfferRepo) setStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offer, ok := r.offers[id]; ok {
		offer.Status = status
		offer.Version++
	}
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
	seq   int

	beforeWrite func()
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]*models.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appts {
		if existing.OfferID == appt.OfferID && statusIn(existing.Status, models.LiveAppointmentStatuses) {
			return repository.ErrDuplicateLive
		}
	}
	r.seq++
	if appt.ID == "" {
		appt.ID = fmt.Sprintf("appt-%d", r.seq)
	}
	appt.Status = models.AppointmentStatusPending
	appt.Version = 1
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeAppointmentRepo) GetLiveByOfferID(ctx context.Context, offerID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appts {
		if appt.OfferID == offerID && statusIn(appt.Status, models.LiveAppointmentStatuses) {
			cp := *appt
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) TransitionStatus(ctx context.Context, id string, from []string, to string, extra map[string]interface{}) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beforeWrite != nil {
		hook := r.beforeWrite
		r.beforeWrite = nil
		hook()
	}
	appt, ok := r.appts[id]
	if !ok || !statusIn(appt.Status, from) {
		return nil, repository.ErrNoMatch
	}
	appt.Status = to
	appt.Version++
	if reason, ok := extra["cancel_reason"].(string); ok {
		appt.CancelReason = reason
	}
	if by, ok := extra["cancelled_by"].(string); ok {
		appt.CancelledBy = by
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeAppointmentRepo) EnsureIndexes() error { return nil }

func (r *fakeAppointmentRepo) setStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt, ok := r.appts[id]; ok {
		appt.Status = status
		appt.Version++
	}
}

type fakeThreadRepo struct {
	mu       sync.Mutex
	messages []models.ThreadMessage
	seq      int
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{}
}

func (r *fakeThreadRepo) Append(ctx context.Context, msg *models.ThreadMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%04d", r.seq)
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeThreadRepo) AppendSystem(ctx context.Context, msg *models.ThreadMessage) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.messages {
		if existing.TransitionID == msg.TransitionID {
			return false, nil
		}
	}
	r.seq++
	msg.ID = fmt.Sprintf("msg-%04d", r.seq)
	msg.AuthorID = models.SystemAuthorID
	msg.IsSystem = true
	r.messages = append(r.messages, *msg)
	return true, nil
}

func (r *fakeThreadRepo) ListByThread(ctx context.Context, threadID string, limit int64) ([]models.ThreadMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ThreadMessage
	for i := len(r.messages) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.messages[i].ThreadID == threadID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

func (r *fakeThreadRepo) EnsureIndexes() error { return nil }

type fakePartyRepo struct {
	parties map[string]*models.Party
}

func (r *fakePartyRepo) GetByID(ctx context.Context, id string) (*models.Party, error) {
	party, ok := r.parties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return party, nil
}

// fakeEmitter records emissions instead of dispatching them.
type fakeEmitter struct {
	mu          sync.Mutex
	transitions []models.SideEffectPayload
	changes     []models.ChangeEvent
}

func (e *fakeEmitter) EmitTransition(ctx context.Context, payload models.SideEffectPayload) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitions = append(e.transitions, payload)
}

func (e *fakeEmitter) EmitChange(ctx context.Context, event models.ChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.changes = append(e.changes, event)
}

func (e *fakeEmitter) lastTransition() models.SideEffectPayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.transitions) == 0 {
		return models.SideEffectPayload{}
	}
	return e.transitions[len(e.transitions)-1]
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

const (
	testClientID   = "client-1"
	testProviderID = "provider-1"
	testRequestID  = "request-1"
)

type testEnv struct {
	svc     *DefaultNegotiationService
	offers  *fakeOfferRepo
	appts   *fakeAppointmentRepo
	thread  *fakeThreadRepo
	emitter *fakeEmitter
}

func newTestEnv() *testEnv {
	offers := newFakeOfferRepo()
	appts := newFakeAppointmentRepo()
	thread := newFakeThreadRepo()
	emitter := &fakeEmitter{}
	parties := &fakePartyRepo{parties: map[string]*models.Party{
		testClientID:   {ID: testClientID, DisplayName: "Amelie", Role: models.RoleClient},
		testProviderID: {ID: testProviderID, DisplayName: "Marco", Role: models.RoleProvider},
	}}

	return &testEnv{
		svc: &DefaultNegotiationService{
			Offers:       offers,
			Appointments: appts,
			Thread:       thread,
			Parties:      parties,
			Emitter:      emitter,
			Logger:       zap.NewNop(),
		},
		offers:  offers,
		appts:   appts,
		thread:  thread,
		emitter: emitter,
	}
}

// createOffer opens a fresh negotiation and returns the offer id.
func (env *testEnv) createOffer(ctx context.Context, price float64) string {
	view, err := env.svc.CreateOffer(ctx, testProviderID, models.CreateOfferInput{
		ClientID:  testClientID,
		RequestID: testRequestID,
		Price:     price,
	})
	if err != nil {
		panic(err)
	}
	return view.Offer.ID
}

// confirmedOffer creates an offer and has the client accept it.
func (env *testEnv) confirmedOffer(ctx context.Context, price float64) string {
	offerID := env.createOffer(ctx, price)
	if _, err := env.svc.AcceptOffer(ctx, testClientID, offerID); err != nil {
		panic(err)
	}
	return offerID
}

// pendingAppointment drives a confirmed offer to a proposed slot.
func (env *testEnv) pendingAppointment(ctx context.Context, price float64) (offerID, apptID string) {
	offerID = env.confirmedOffer(ctx, price)
	view, err := env.svc.ProposeAppointment(ctx, testClientID, offerID, "2026-09-10", "14:30")
	if err != nil {
		panic(err)
	}
	return offerID, view.Appointment.ID
}
