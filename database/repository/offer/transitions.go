package offerRepo

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

// findOneAndTransition runs a conditional update against the offer and
// returns the updated document. MatchedCount-style semantics: if the filter
// missed (wrong status or missing record) the caller gets ErrNoMatch and must
// re-read to tell conflict from not-found.
func (r *mongoOfferRepo) findOneAndTransition(ctx context.Context, id string, from []string, set bson.M) (*models.Offer, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": from},
	}
	set["updated_at"] = time.Now()
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Offer
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNoMatch
		}
		return nil, err
	}
	return &updated, nil
}

func (r *mongoOfferRepo) TransitionStatus(ctx context.Context, id string, from []string, to string) (*models.Offer, error) {
	return r.findOneAndTransition(ctx, id, from, bson.M{"status": to})
}

func (r *mongoOfferRepo) UpdatePrice(ctx context.Context, id string, from []string, price float64) (*models.Offer, error) {
	return r.findOneAndTransition(ctx, id, from, bson.M{"price": price})
}
