// Package handler exposes the payment endpoints: notification intake,
// preference creation, and the processor webhook.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coursegate/internal/payment/models"
	"coursegate/internal/payment/processor"
	"coursegate/internal/payment/service"
	"coursegate/internal/platform/middleware"
	"coursegate/internal/transport/http/shared"
	derrors "coursegate/pkg/domain-errors"
)

// Service defines the payment operations the handler delegates to.
type Service interface {
	RecordNotification(ctx context.Context, req models.NotificationRequest) error
	CreatePreference(ctx context.Context, req models.PreferenceRequest) (*processor.Preference, error)
	HandleWebhook(ctx context.Context, event models.WebhookEvent) service.Outcome
}

// Handler handles payment-related endpoints.
type Handler struct {
	logger  *slog.Logger
	payment Service
}

// New creates a payment Handler.
func New(payment Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		payment: payment,
	}
}

// Register registers the payment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/payment_notification", h.handleNotification)
	r.Post("/create_preference", h.handleCreatePreference)
	r.Post("/webhook", h.handleWebhook)
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.payment.RecordNotification(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "payment notification rejected",
			"request_id", middleware.GetRequestID(ctx),
			"payment_id", req.ID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, shared.Response{Success: true})
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

func (h *Handler) handleCreatePreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.PreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	pref, err := h.payment.CreatePreference(ctx, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, preferenceResponse{
		ID:        pref.ID,
		InitPoint: pref.InitPoint,
	})
}

// handleWebhook always acknowledges with 200. The processor retries
// non-2xx responses forever, and the reconciler is idempotent, so a failed
// delivery is logged and absorbed rather than surfaced.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var event models.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.WarnContext(ctx, "unparseable webhook delivery",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	outcome := h.payment.HandleWebhook(ctx, event)
	h.logger.InfoContext(ctx, "webhook delivery handled",
		"request_id", middleware.GetRequestID(ctx),
		"action", event.Action,
		"payment_id", event.Data.ID,
		"outcome", string(outcome),
	)
	w.WriteHeader(http.StatusOK)
}
