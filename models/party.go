package models

// Party roles.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// Party is the read-only identity projection this engine needs: a display
// name for system messages and an FCM token for pushes. Profiles themselves
// are owned by the surrounding application.
type Party struct {
	ID          string `bson:"id" json:"id"`
	DisplayName string `bson:"display_name" json:"display_name"`
	Role        string `bson:"role" json:"role"`
	FCMToken    string `bson:"fcm_token" json:"-"`
}
