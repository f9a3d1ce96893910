package tasks

import (
	"encoding/json"
	"time"

	"tailorlink/models"

	"github.com/hibiken/asynq"
)

const TypeSideEffectDispatch = "sideeffect:dispatch"

// NewSideEffectTask builds the outbox task for one committed transition. The
// transition id is used as the asynq task id, so re-emitting the same
// transition is a no-op at the queue level.
func NewSideEffectTask(payload models.SideEffectPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSideEffectDispatch, b)
	opts := []asynq.Option{
		asynq.TaskID(payload.TransitionID),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}

	return task, opts, nil
}
