package models

import (
	"time"

	derrors "coursegate/pkg/domain-errors"
)

// PaymentNotification is a payment reported directly by the course page,
// distinct from processor webhooks. External payment IDs should be unique per
// real-world payment but the original contract does not enforce it.
type PaymentNotification struct {
	PaymentID  string
	Email      string
	Courses    string
	Amount     float64
	ReceivedAt time.Time
}

// CheckoutRecord is a processor-confirmed payment, keyed by the processor's
// payment ID. Created only for approved payments and never updated with
// different data afterwards.
type CheckoutRecord struct {
	PaymentID  string
	Email      string
	Courses    string
	Amount     float64
	RecordedAt time.Time
}

// NotificationRequest is the payload accepted by POST /payment_notification.
type NotificationRequest struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Courses []string `json:"courses"`
	Amount  float64  `json:"amount"`
}

// Validate checks the required notification fields.
func (r NotificationRequest) Validate() error {
	switch {
	case r.ID == "":
		return derrors.New(derrors.CodeBadRequest, "id is required")
	case r.Email == "":
		return derrors.New(derrors.CodeBadRequest, "email is required")
	case len(r.Courses) == 0:
		return derrors.New(derrors.CodeBadRequest, "courses are required")
	case r.Amount <= 0:
		return derrors.New(derrors.CodeBadRequest, "amount must be positive")
	}
	return nil
}

// PreferenceRequest is the payload accepted by POST /create_preference.
type PreferenceRequest struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Validate checks the required preference fields.
func (r PreferenceRequest) Validate() error {
	switch {
	case r.Title == "":
		return derrors.New(derrors.CodeBadRequest, "title is required")
	case r.Price <= 0:
		return derrors.New(derrors.CodeBadRequest, "price must be positive")
	case r.Quantity <= 0:
		return derrors.New(derrors.CodeBadRequest, "quantity must be positive")
	}
	return nil
}

// WebhookEvent is the processor's delivery envelope. Only payment-creation
// events carry information this service acts on.
type WebhookEvent struct {
	Action string           `json:"action"`
	Data   WebhookEventData `json:"data"`
}

// WebhookEventData identifies the payment the event refers to.
type WebhookEventData struct {
	ID string `json:"id"`
}

// ActionPaymentCreated is the only webhook action that triggers
// reconciliation.
const ActionPaymentCreated = "payment.created"
