package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names the domain event being recorded.
type Action string

const (
	ActionUserRegistered       Action = "user_registered"
	ActionUserLogin            Action = "user_login"
	ActionUsersPurged          Action = "users_purged"
	ActionNotificationRecorded Action = "payment_notification_recorded"
	ActionCheckoutRecorded     Action = "checkout_recorded"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      string    `json:"actor"`
	Action     Action    `json:"action"`
	Subject    string    `json:"subject"`
	Detail     string    `json:"detail"`
}
