// Package service implements notification intake, checkout preference
// creation, and webhook reconciliation against the payment processor.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"coursegate/internal/audit"
	"coursegate/internal/payment/models"
	"coursegate/internal/payment/processor"
	"coursegate/internal/platform/metrics"
	"coursegate/internal/platform/middleware"
	derrors "coursegate/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Ledger is the persistence port the service depends on.
type Ledger interface {
	SaveNotification(ctx context.Context, n *models.PaymentNotification) error
	UpsertCheckout(ctx context.Context, c *models.CheckoutRecord) (inserted bool, err error)
}

// Processor fetches authoritative payment state and creates preferences.
type Processor interface {
	CreatePreference(ctx context.Context, req processor.PreferenceRequest) (*processor.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*processor.Payment, error)
}

// Deduper short-circuits deliveries for payments that already reached a
// terminal outcome. Marking is separate from checking so that deliveries
// ending in a transient failure (fetch error, payment still pending) stay
// unmarked and the processor's redelivery is processed in full.
type Deduper interface {
	AlreadyDelivered(ctx context.Context, paymentID string) bool
	MarkDelivered(ctx context.Context, paymentID string)
}

// Outcome classifies how a webhook delivery was resolved. Every delivery is
// acknowledged regardless of outcome; outcomes exist for logs and metrics.
type Outcome string

const (
	OutcomeIgnoredAction     Outcome = "ignored_action"
	OutcomeDuplicateDelivery Outcome = "duplicate_delivery"
	OutcomeFetchFailed       Outcome = "fetch_failed"
	OutcomeNotApproved       Outcome = "not_approved"
	OutcomeNoPayer           Outcome = "no_payer"
	OutcomeRecorded          Outcome = "recorded"
	OutcomeAlreadyRecorded   Outcome = "already_recorded"
	OutcomeStorageFailed     Outcome = "storage_failed"
)

// Service provides the payment operations.
type Service struct {
	ledger    Ledger
	processor Processor
	dedup     Deduper
	auditor   audit.Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow sets the clock function (for testing).
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDeduper installs a delivery deduper. Without one every delivery is
// treated as first, which the idempotent upsert absorbs.
func WithDeduper(d Deduper) Option {
	return func(s *Service) {
		s.dedup = d
	}
}

// New creates a payment Service. auditor and metrics may be nil.
func New(ledger Ledger, proc Processor, auditor audit.Recorder, m *metrics.Metrics, logger *slog.Logger, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if proc == nil {
		return nil, fmt.Errorf("processor client is required")
	}
	s := &Service{
		ledger:    ledger,
		processor: proc,
		auditor:   auditor,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("coursegate/payment"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RecordNotification appends a page-reported payment to the notification log.
// Notifications are unverified and never deduplicated; reconciliation against
// the processor happens only on the webhook path.
func (s *Service) RecordNotification(ctx context.Context, req models.NotificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	courses, err := json.Marshal(req.Courses)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeBadRequest, "invalid courses list")
	}

	notification := &models.PaymentNotification{
		PaymentID:  req.ID,
		Email:      req.Email,
		Courses:    string(courses),
		Amount:     req.Amount,
		ReceivedAt: s.now(),
	}
	if err := s.ledger.SaveNotification(ctx, notification); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to save payment notification")
	}

	s.record(ctx, audit.Event{
		Actor:   req.Email,
		Action:  audit.ActionNotificationRecorded,
		Subject: req.ID,
		Detail:  fmt.Sprintf("amount=%.2f", req.Amount),
	})
	return nil
}

// CreatePreference asks the processor for a checkout preference covering a
// single line item.
func (s *Service) CreatePreference(ctx context.Context, req models.PreferenceRequest) (*processor.Preference, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pref, err := s.processor.CreatePreference(ctx, processor.PreferenceRequest{
		Items: []processor.Item{{
			Title:     req.Title,
			UnitPrice: req.Price,
			Quantity:  req.Quantity,
		}},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "preference creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"title", req.Title,
			"error", err,
		)
		return nil, err
	}
	return pref, nil
}

// HandleWebhook reconciles a processor delivery. It filters non-creation
// actions, skips repeats, fetches the authoritative payment, and records a
// checkout only for approved payments with a known payer. The caller
// acknowledges the delivery no matter what is returned here.
func (s *Service) HandleWebhook(ctx context.Context, event models.WebhookEvent) Outcome {
	ctx, span := s.tracer.Start(ctx, "payment.HandleWebhook",
		trace.WithAttributes(
			attribute.String("webhook.action", event.Action),
			attribute.String("webhook.payment_id", event.Data.ID),
		),
	)
	defer span.End()

	outcome := s.reconcile(ctx, event)
	span.SetAttributes(attribute.String("webhook.outcome", string(outcome)))
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(string(outcome)).Inc()
	}
	return outcome
}

func (s *Service) reconcile(ctx context.Context, event models.WebhookEvent) Outcome {
	if event.Action != models.ActionPaymentCreated || event.Data.ID == "" {
		return OutcomeIgnoredAction
	}
	paymentID := event.Data.ID

	if s.dedup != nil && s.dedup.AlreadyDelivered(ctx, paymentID) {
		s.logger.InfoContext(ctx, "duplicate webhook delivery skipped",
			"request_id", middleware.GetRequestID(ctx),
			"payment_id", paymentID,
		)
		return OutcomeDuplicateDelivery
	}

	payment, err := s.processor.GetPayment(ctx, paymentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment fetch failed",
			"request_id", middleware.GetRequestID(ctx),
			"payment_id", paymentID,
			"error", err,
		)
		return OutcomeFetchFailed
	}

	if payment.Payer == nil || payment.Payer.Email == "" {
		return OutcomeNoPayer
	}
	if payment.Status != processor.StatusApproved {
		s.logger.InfoContext(ctx, "payment not approved, skipping",
			"payment_id", paymentID,
			"status", payment.Status,
		)
		return OutcomeNotApproved
	}

	titles := make([]string, 0, len(payment.AdditionalInfo.Items))
	for _, item := range payment.AdditionalInfo.Items {
		titles = append(titles, item.Title)
	}
	courses, err := json.Marshal(titles)
	if err != nil {
		return OutcomeStorageFailed
	}

	inserted, err := s.ledger.UpsertCheckout(ctx, &models.CheckoutRecord{
		PaymentID:  paymentID,
		Email:      payment.Payer.Email,
		Courses:    string(courses),
		Amount:     payment.TransactionAmount,
		RecordedAt: s.now(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "checkout upsert failed",
			"request_id", middleware.GetRequestID(ctx),
			"payment_id", paymentID,
			"error", err,
		)
		return OutcomeStorageFailed
	}
	// The payment is durably recorded either way; only now is it safe to
	// short-circuit future deliveries.
	if s.dedup != nil {
		s.dedup.MarkDelivered(ctx, paymentID)
	}
	if !inserted {
		return OutcomeAlreadyRecorded
	}

	if s.metrics != nil {
		s.metrics.CheckoutUpserts.Inc()
	}
	s.record(ctx, audit.Event{
		Actor:   payment.Payer.Email,
		Action:  audit.ActionCheckoutRecorded,
		Subject: paymentID,
		Detail:  fmt.Sprintf("amount=%.2f", payment.TransactionAmount),
	})
	return OutcomeRecorded
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Record(ctx, event)
	}
}
