package offerRepo

import (
	"context"
	"errors"
	"time"

	"tailorlink/database/repository"
	"tailorlink/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new offer in Pending state.
func (r *mongoOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	offer.Status = models.OfferStatusPending
	offer.Version = 1
	offer.CreatedAt = time.Now()
	offer.UpdatedAt = offer.CreatedAt

	if _, err := r.coll.InsertOne(ctx, offer); err != nil {
		return err
	}
	return nil
}

// GetByID returns an offer by its ID.
func (r *mongoOfferRepo) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&offer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &offer, nil
}
