package negotiation

import (
	"context"
	"encoding/json"
	"errors"

	"tailorlink/models"
	"tailorlink/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TransitionEmitter fans out the advisory side effects of a committed
// transition. The state write is the source of truth: emission failures are
// logged and never propagated to the caller.
type TransitionEmitter interface {
	// EmitTransition enqueues the outbox task (system message + push) and
	// publishes the change event for live-view hubs.
	EmitTransition(ctx context.Context, payload models.SideEffectPayload)
	// EmitChange publishes a change event only (plain chat messages).
	EmitChange(ctx context.Context, event models.ChangeEvent)
}

// DefaultEmitter dispatches through asynq and Redis pub/sub.
type DefaultEmitter struct {
	Tasks  *asynq.Client
	Events *redis.Client
	Logger *zap.Logger
}

func (e *DefaultEmitter) EmitTransition(ctx context.Context, payload models.SideEffectPayload) {
	task, opts, err := tasks.NewSideEffectTask(payload)
	if err == nil {
		_, err = e.Tasks.EnqueueContext(ctx, task, opts...)
	}
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		// Side-effect failure: the transition stands, the thread entry and
		// push are lost until the task is re-enqueued by a retry of the
		// same transition.
		e.Logger.Error("failed to enqueue side-effect task",
			zap.String("transitionID", payload.TransitionID),
			zap.Error(err))
	}

	e.EmitChange(ctx, models.ChangeEvent{
		OfferID: payload.OfferID,
		Kind:    payload.Kind,
		Version: payload.Version,
	})
}

func (e *DefaultEmitter) EmitChange(ctx context.Context, event models.ChangeEvent) {
	b, err := json.Marshal(event)
	if err == nil {
		err = e.Events.Publish(ctx, models.ChangeChannel, b).Err()
	}
	if err != nil {
		// Subscribers converge on the next event; nothing to roll back.
		e.Logger.Warn("failed to publish change event",
			zap.String("offerID", event.OfferID),
			zap.Error(err))
	}
}
