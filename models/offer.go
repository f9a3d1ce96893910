package models

import "time"

// Offer statuses.
const (
	OfferStatusPending   = "Pending"
	OfferStatusConfirmed = "Confirmed"
	OfferStatusRefused   = "Refused"
)

// Offer is a priced proposal from a provider to a client for a specific
// tailoring request. Status only ever moves Pending -> Confirmed or
// Pending -> Refused; the price may still change while Pending or Confirmed
// (before an appointment exists).
type Offer struct {
	ID         string    `bson:"id" json:"id"`
	ClientID   string    `bson:"client_id" json:"client_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	RequestID  string    `bson:"request_id" json:"request_id"` // underlying job/listing under discussion
	Price      float64   `bson:"price" json:"price"`
	Status     string    `bson:"status" json:"status"`
	Version    int64     `bson:"version" json:"version"` // bumped on every committed transition
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// CreateOfferInput is the payload for opening a negotiation.
type CreateOfferInput struct {
	ClientID  string  `json:"client_id" binding:"required"`
	RequestID string  `json:"request_id" binding:"required"`
	Price     float64 `json:"price" binding:"required"`
}
