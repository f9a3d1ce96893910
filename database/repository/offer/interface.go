package offerRepo

import (
	"context"

	"tailorlink/database"
	"tailorlink/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// OfferRepository persists offers and applies their state transitions as
// conditional writes: the filter re-checks the expected source status, so a
// concurrent competing transition surfaces as repository.ErrNoMatch instead
// of a blind overwrite.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	// TransitionStatus moves the offer from one of the expected statuses to
	// the target status and returns the updated record.
	TransitionStatus(ctx context.Context, id string, from []string, to string) (*models.Offer, error)
	// UpdatePrice sets a new price while the offer is in one of the expected
	// statuses and returns the updated record.
	UpdatePrice(ctx context.Context, id string, from []string, price float64) (*models.Offer, error)
	EnsureIndexes() error
}

type mongoOfferRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferRepo returns an OfferRepository backed by MongoDB.
func NewMongoOfferRepo() OfferRepository {
	return &mongoOfferRepo{
		coll: database.DB().Collection("offers"),
	}
}
