package models

// SideEffectPayload is the outbox task body enqueued after a transition
// commits. TransitionID ("offer:<id>:v<version>" or "appointment:<id>:v<version>")
// doubles as the asynq task id and the idempotency key for the system-message
// upsert, so at-least-once delivery never duplicates a thread entry.
type SideEffectPayload struct {
	TransitionID string            `json:"transition_id"`
	OfferID      string            `json:"offer_id"`
	ThreadText   string            `json:"thread_text"`
	NotifyID     string            `json:"notify_id"` // counter-party to push to
	NotifyTitle  string            `json:"notify_title"`
	NotifyBody   string            `json:"notify_body"`
	Data         map[string]string `json:"data,omitempty"`
	Kind         string            `json:"kind"`    // ChangeKindOffer or ChangeKindAppointment
	Version      int64             `json:"version"` // record version after the transition
}
