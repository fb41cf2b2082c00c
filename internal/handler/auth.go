package handler

import (
	"errors"
	"net/http"

	"github.com/devconnector/devconnector-go/internal/metrics"
	"github.com/devconnector/devconnector-go/internal/middleware"
	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/service"
	"github.com/devconnector/devconnector-go/internal/validation"
)

// AuthHandler handles HTTP requests for registration and authentication.
type AuthHandler struct {
	service  *service.AuthService
	validate *validation.Validator
	metrics  *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler. m may be nil.
func NewAuthHandler(svc *service.AuthService, v *validation.Validator, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{service: svc, validate: v, metrics: m}
}

// HandleRegister handles POST /api/users requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired),
			errors.Is(err, service.ErrEmailRequired),
			errors.Is(err, service.ErrPasswordRequired),
			errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			serverError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /api/auth requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.LoginAttempt(metrics.ResultInvalid)
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		h.metrics.LoginAttempt(metrics.ResultError)
		serverError(w, r, err)
		return
	}

	h.metrics.LoginAttempt(metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /api/auth requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse(middleware.MsgNoToken))
		return
	}

	resp, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
