package threadRepo

import (
	"context"

	"tailorlink/database"
	"tailorlink/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ThreadRepository is the append-only message log of a negotiation. Plain
// chat messages append unconditionally; system messages upsert on their
// transition id so a retried side-effect task writes exactly one entry.
type ThreadRepository interface {
	Append(ctx context.Context, msg *models.ThreadMessage) error
	// AppendSystem upserts a system message keyed by msg.TransitionID.
	// Returns true when the entry was newly inserted.
	AppendSystem(ctx context.Context, msg *models.ThreadMessage) (bool, error)
	// ListByThread returns up to limit messages of a thread, newest first.
	ListByThread(ctx context.Context, threadID string, limit int64) ([]models.ThreadMessage, error)
	EnsureIndexes() error
}

type mongoThreadRepo struct {
	coll *mongo.Collection
}

// NewMongoThreadRepo returns a ThreadRepository backed by MongoDB.
func NewMongoThreadRepo() ThreadRepository {
	return &mongoThreadRepo{
		coll: database.DB().Collection("thread_messages"),
	}
}
