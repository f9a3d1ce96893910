package partyRepo

import (
	"context"
	"errors"

	"tailorlink/database"
	"tailorlink/database/repository"
	"tailorlink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PartyRepository is the read-only identity lookup: display name, role and
// FCM token for a party id. Profile ownership lives elsewhere.
type PartyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Party, error)
}

type mongoPartyRepo struct {
	coll *mongo.Collection
}

// NewMongoPartyRepo returns a PartyRepository backed by MongoDB.
func NewMongoPartyRepo() PartyRepository {
	return &mongoPartyRepo{
		coll: database.DB().Collection("parties"),
	}
}

// GetByID resolves a party id.
func (r *mongoPartyRepo) GetByID(ctx context.Context, id string) (*models.Party, error) {
	var party models.Party
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&party)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &party, nil
}
