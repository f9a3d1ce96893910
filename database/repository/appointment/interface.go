package appointmentRepo

import (
	"context"

	"tailorlink/database"
	"tailorlink/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AppointmentRepository persists appointments. Creation and every status
// transition are conditional writes; the partial unique index on offer_id
// (live statuses only) makes "at most one live appointment per offer" a
// property of the store rather than of callers scanning for duplicates.
type AppointmentRepository interface {
	// Create inserts the appointment in Pending state. Returns
	// repository.ErrDuplicateLive if a live appointment already exists for
	// the same offer.
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// GetLiveByOfferID returns the single live appointment for the offer, or
	// (nil, nil) when none exists.
	GetLiveByOfferID(ctx context.Context, offerID string) (*models.Appointment, error)
	// TransitionStatus moves the appointment from one of the expected
	// statuses to the target status, applying any extra fields (cancel
	// reason, cancelled-by) in the same write.
	TransitionStatus(ctx context.Context, id string, from []string, to string, extra map[string]interface{}) (*models.Appointment, error)
	EnsureIndexes() error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo returns an AppointmentRepository backed by MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: database.DB().Collection("appointments"),
	}
}
