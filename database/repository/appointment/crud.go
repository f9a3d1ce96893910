package appointmentRepo

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

// Create inserts a new appointment in Pending state. The partial unique
// index rejects the insert when a live appointment already exists for the
// offer, which closes the race between two concurrent proposals.
func (r *mongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.Status = models.AppointmentStatusPending
	appt.Version = 1
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateLive
		}
		return err
	}
	return nil
}

// GetByID returns an appointment by its ID.
func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

// GetLiveByOfferID returns the live appointment for an offer, if any.
func (r *mongoAppointmentRepo) GetLiveByOfferID(ctx context.Context, offerID string) (*models.Appointment, error) {
	filter := bson.M{
		"offer_id": offerID,
		"status":   bson.M{"$in": models.LiveAppointmentStatuses},
	}
	var appt models.Appointment
	err := r.coll.FindOne(ctx, filter).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}
