package models

// PaymentIntentRequest is sent by the client to start paying a completed job.
type PaymentIntentRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required"`
	Currency      string `json:"currency"`
}

// PaymentIntentResponse carries what the client SDK needs to collect the
// payment. Capture itself is Stripe's business; the webhook reports back.
type PaymentIntentResponse struct {
	AppointmentID string  `json:"appointment_id"`
	IntentID      string  `json:"intent_id"`
	ClientSecret  string  `json:"client_secret"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
}
