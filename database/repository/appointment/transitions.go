package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"tailorlink/database/repository"
	"tailorlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransitionStatus applies a conditional status transition and returns the
// updated record. ErrNoMatch means the filter missed: either the record is
// gone or another actor moved it first.
func (r *mongoAppointmentRepo) TransitionStatus(ctx context.Context, id string, from []string, to string, extra map[string]interface{}) (*models.Appointment, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": from},
	}
	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		set[k] = v
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNoMatch
		}
		return nil, err
	}
	return &updated, nil
}
