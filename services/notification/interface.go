package notification

import (
	"context"
	"fmt"

	partyRepo "tailorlink/database/repository/party"
	"tailorlink/utils"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService is the best-effort push gateway. Failures never affect
// negotiation state; the outbox worker decides whether to retry.
type NotificationService interface {
	SendPush(ctx context.Context, partyID, title, body string, data map[string]string) error
}

// DefaultNotificationService sends via FCM, resolving the target's token
// through the party directory.
type DefaultNotificationService struct {
	Parties partyRepo.PartyRepository
}

func NewDefaultNotificationService(parties partyRepo.PartyRepository) (*DefaultNotificationService, error) {
	if parties == nil {
		return nil, fmt.Errorf("notification service initialization error: party repository is nil")
	}
	return &DefaultNotificationService{Parties: parties}, nil
}

// SendPush looks up a party's FCM token and sends a push.
func (s *DefaultNotificationService) SendPush(ctx context.Context, partyID, title, body string, data map[string]string) error {
	party, err := s.Parties.GetByID(ctx, partyID)
	if err != nil {
		return fmt.Errorf("SendPush: could not find party %s: %w", partyID, err)
	}
	if party.FCMToken == "" {
		// No push target registered; not an error worth retrying.
		return nil
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = party.Role
	}

	msg := &messaging.Message{
		Token: party.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "negotiation",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendPush: failed to send FCM message: %w", err)
	}
	return nil
}
