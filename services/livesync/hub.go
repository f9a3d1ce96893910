package livesync

import (
	"context"
	"encoding/json"
	"sync"

	"tailorlink/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ViewSource produces role-scoped composite snapshots. Satisfied by the
// negotiation service.
type ViewSource interface {
	GetView(ctx context.Context, actorID, offerID string) (*models.CompositeView, error)
}

// Hub fans record-change events out to connected parties. Events arrive on a
// single Redis pub/sub channel and are dispatched serially, so every
// subscriber of an offer observes snapshots in commit order; a slow consumer
// loses intermediate snapshots, never the latest one.
type Hub struct {
	Views  ViewSource
	Events *redis.Client
	Logger *zap.Logger

	mu   sync.Mutex
	subs map[string][]*Subscription
}

// Subscription is one connected party's live feed for one offer.
type Subscription struct {
	OfferID string
	PartyID string

	mu     sync.Mutex
	closed bool
	ch     chan *models.CompositeView
}

// Updates delivers snapshots, newest last. The channel closes on Unsubscribe.
func (s *Subscription) Updates() <-chan *models.CompositeView {
	return s.ch
}

func NewHub(views ViewSource, events *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		Views:  views,
		Events: events,
		Logger: logger,
		subs:   make(map[string][]*Subscription),
	}
}

// Subscribe registers a party on an offer's feed, then queues the initial
// snapshot. Registration comes first so a transition committed while the
// snapshot is being read still reaches the subscriber through Dispatch;
// authorization rides on the same view read, and a rejected read removes the
// registration again. Snapshots carry a version, so a late initial snapshot
// never rolls a client back.
func (h *Hub) Subscribe(ctx context.Context, offerID, partyID string) (*Subscription, error) {
	sub := &Subscription{
		OfferID: offerID,
		PartyID: partyID,
		ch:      make(chan *models.CompositeView, 8),
	}
	h.mu.Lock()
	h.subs[offerID] = append(h.subs[offerID], sub)
	h.mu.Unlock()

	view, err := h.Views.GetView(ctx, partyID, offerID)
	if err != nil {
		h.Unsubscribe(sub)
		return nil, err
	}
	sub.push(view)
	return sub, nil
}

// Unsubscribe removes the subscription, drains anything still queued and
// closes the channel, so a consumer promptly observes closure instead of
// stale snapshots.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.subs[sub.OfferID]
	for i, s := range list {
		if s == sub {
			h.subs[sub.OfferID] = append(list[:i], list[i+1:]...)
			sub.mu.Lock()
			sub.closed = true
			for {
				select {
				case <-sub.ch:
					continue
				default:
				}
				break
			}
			close(sub.ch)
			sub.mu.Unlock()
			break
		}
	}
	if len(h.subs[sub.OfferID]) == 0 {
		delete(h.subs, sub.OfferID)
	}
}

// Run consumes the change-event channel until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.Events.Subscribe(ctx, models.ChangeChannel)
	defer pubsub.Close()

	h.Logger.Info("livesync hub subscribed", zap.String("channel", models.ChangeChannel))
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var ev models.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.Logger.Warn("dropping malformed change event", zap.Error(err))
				continue
			}
			h.Dispatch(ctx, ev)
		}
	}
}

// Dispatch recomputes and pushes a fresh snapshot to every subscriber of the
// changed offer. Each subscriber gets a view scoped to their own role, so
// the action set is always theirs.
func (h *Hub) Dispatch(ctx context.Context, ev models.ChangeEvent) {
	h.mu.Lock()
	list := make([]*Subscription, len(h.subs[ev.OfferID]))
	copy(list, h.subs[ev.OfferID])
	h.mu.Unlock()

	for _, sub := range list {
		view, err := h.Views.GetView(ctx, sub.PartyID, sub.OfferID)
		if err != nil {
			h.Logger.Warn("failed to rebuild view for subscriber",
				zap.String("offerID", sub.OfferID),
				zap.String("partyID", sub.PartyID),
				zap.Error(err))
			continue
		}
		sub.push(view)
	}
}

// push delivers without blocking: when the buffer is full the oldest queued
// snapshot is dropped. Subscribers converge on the newest state.
func (s *Subscription) push(view *models.CompositeView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- view:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
