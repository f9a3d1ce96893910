package models

import "time"

// CompositeView is the projection pushed to each connected party: the offer,
// its live appointment (if any), the newest slice of the thread and the set
// of actions legal for the viewer's role. Version is max(offer.Version,
// appointment.Version); subscribers drop snapshots older than the last one
// they rendered.
type CompositeView struct {
	Offer       *Offer          `json:"offer"`
	Appointment *Appointment    `json:"appointment,omitempty"`
	Messages    []ThreadMessage `json:"messages"`
	Actions     []string        `json:"actions"`
	Version     int64           `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
}
