package handler

import (
	"errors"
	"net/http"

	"github.com/devconnector/devconnector-go/internal/middleware"
	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/service"
	"github.com/devconnector/devconnector-go/internal/validation"
)

const msgInvalidLink = "Please include a valid URL"

// ProfileHandler handles HTTP requests for the caller's own profile.
type ProfileHandler struct {
	service  *service.ProfileService
	validate *validation.Validator
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, v *validation.Validator) *ProfileHandler {
	return &ProfileHandler{service: svc, validate: v}
}

// HandleMe handles GET /api/profile/me requests.
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse(middleware.MsgNoToken))
		return
	}

	resp, err := h.service.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpsert handles POST /api/profile requests.
func (h *ProfileHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse(middleware.MsgNoToken))
		return
	}

	var req model.ProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	resp, err := h.service.Upsert(r.Context(), userID, req)
	if err != nil {
		var linkErr *service.InvalidLinkError
		switch {
		case errors.As(err, &linkErr):
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Errors: []model.ErrorDetail{{
				Msg:      msgInvalidLink,
				Param:    linkErr.Field,
				Location: "body",
			}}})
		case errors.Is(err, service.ErrStatusRequired), errors.Is(err, service.ErrSkillsRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			serverError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
