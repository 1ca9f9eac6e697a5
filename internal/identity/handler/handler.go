// Package handler exposes the identity endpoints: registration, login, and
// the admin-only purge.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coursegate/internal/identity/models"
	"coursegate/internal/platform/middleware"
	"coursegate/internal/transport/http/shared"
	derrors "coursegate/pkg/domain-errors"
)

// Service defines the identity operations the handler delegates to.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	DeleteAllUsers(ctx context.Context) (int64, error)
}

// Handler handles identity-related endpoints.
type Handler struct {
	logger   *slog.Logger
	identity Service
	tokenTTL time.Duration
}

// New creates an identity Handler.
func New(identity Service, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		identity: identity,
		tokenTTL: tokenTTL,
	}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Delete("/deleteAll", h.handleDeleteAll)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.identity.Register(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", middleware.GetRequestID(ctx),
			"username", req.Username,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, shared.Response{Success: true})
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.identity.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", middleware.GetRequestID(ctx),
			"username", req.Username,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	// The token also travels as an HTTP-only cookie for browser clients.
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		Success:  true,
		Username: result.Username,
		Token:    result.Token,
	})
}

type deleteAllResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	removed, err := h.identity.DeleteAllUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete users",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, deleteAllResponse{
		Success: true,
		Message: fmt.Sprintf("%d record(s) removed", removed),
		Removed: removed,
	})
}
