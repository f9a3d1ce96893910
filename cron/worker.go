package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tailorlink/config"
	threadRepo "tailorlink/database/repository/thread"
	"tailorlink/models"
	"tailorlink/services/notification"
	"tailorlink/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// changePublisher is the slice of the Redis client the worker needs to
// announce new thread entries to live-view hubs.
type changePublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// InitSideEffectWorker runs the outbox worker in background: for each
// committed transition it appends the system thread message (idempotent on
// the transition id) and pushes the counter-party notification.
func InitSideEffectWorker(thread threadRepo.ThreadRepository, notifSvc notification.NotificationService, events *redis.Client) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSideEffectDispatch, handleSideEffectTask(thread, notifSvc, events))

	go func() {
		log.Println("[SideEffectWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SideEffectWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SideEffectWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleSideEffectTask(thread threadRepo.ThreadRepository, notifSvc notification.NotificationService, events changePublisher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SideEffectPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[SideEffectHandler] invalid payload: %v", err)
			return err
		}

		inserted, err := thread.AppendSystem(ctx, &models.ThreadMessage{
			ThreadID:     p.OfferID,
			Text:         p.ThreadText,
			TransitionID: p.TransitionID,
		})
		if err != nil {
			log.Printf("[SideEffectHandler] failed to append system message for %s: %v", p.TransitionID, err)
			return err
		}

		if inserted {
			// Let live views pick up the new thread entry.
			ev := models.ChangeEvent{OfferID: p.OfferID, Kind: models.ChangeKindThread, Version: p.Version}
			if b, err := json.Marshal(ev); err == nil {
				if err := events.Publish(ctx, models.ChangeChannel, b).Err(); err != nil {
					log.Printf("[SideEffectHandler] failed to publish thread event for %s: %v", p.TransitionID, err)
				}
			}
		}

		if p.NotifyID == "" {
			return nil
		}
		if err := notifSvc.SendPush(ctx, p.NotifyID, p.NotifyTitle, p.NotifyBody, p.Data); err != nil {
			log.Printf("[SideEffectHandler] failed to send notification for %s: %v", p.TransitionID, err)
			return err
		}
		return nil
	}
}
