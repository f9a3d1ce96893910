package threadRepo

import (
	"context"
	"time"

	"tailorlink/models"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Append inserts a plain chat message. ULID ids sort in append order, which
// keeps the thread's creation-time ordering stable across equal timestamps.
func (r *mongoThreadRepo) Append(ctx context.Context, msg *models.ThreadMessage) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

// AppendSystem upserts a system message keyed by transition id. A retried
// outbox task matches the existing entry and inserts nothing.
func (r *mongoThreadRepo) AppendSystem(ctx context.Context, msg *models.ThreadMessage) (bool, error) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.AuthorID = models.SystemAuthorID
	msg.IsSystem = true

	filter := bson.M{"transition_id": msg.TransitionID}
	update := bson.M{"$setOnInsert": msg}
	opts := options.Update().SetUpsert(true)

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// ListByThread returns the newest messages of a thread, creation time
// descending.
func (r *mongoThreadRepo) ListByThread(ctx context.Context, threadID string, limit int64) ([]models.ThreadMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.ThreadMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
