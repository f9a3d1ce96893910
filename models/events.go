package models

// ChangeChannel is the Redis pub/sub channel carrying record-change events
// from the negotiation engine and the side-effect worker to live-view hubs.
const ChangeChannel = "tailorlink:changes"

// Change-event kinds.
const (
	ChangeKindOffer       = "offer"
	ChangeKindAppointment = "appointment"
	ChangeKindThread      = "thread"
)

// ChangeEvent announces that something about an offer changed. It carries no
// state of its own; hubs re-read the records and push a fresh snapshot.
type ChangeEvent struct {
	OfferID string `json:"offer_id"`
	Kind    string `json:"kind"`
	Version int64  `json:"version"`
}
