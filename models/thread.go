package models

import "time"

// SystemAuthorID is the author recorded on machine-generated thread entries.
const SystemAuthorID = "system"

// ThreadMessage is one entry in the shared conversation between the two
// parties of an offer. The thread id is the offer id. System messages are
// append-only audit entries written by the negotiation engine; TransitionID
// keys them so a retried side-effect task cannot append a duplicate.
type ThreadMessage struct {
	ID           string    `bson:"id" json:"id"` // ULID, sortable in append order
	ThreadID     string    `bson:"thread_id" json:"thread_id"`
	AuthorID     string    `bson:"author_id" json:"author_id"`
	Text         string    `bson:"text" json:"text"`
	IsSystem     bool      `bson:"is_system" json:"is_system"`
	TransitionID string    `bson:"transition_id,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
