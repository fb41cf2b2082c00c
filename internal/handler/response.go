package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1MB

// Client facing messages that are not derived from an error value.
const (
	msgServerError  = "Server Error"
	msgBodyTooLarge = "Request body too large"
	msgInvalidBody  = "Invalid request body"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) model.ErrorResponse {
	return model.ErrorResponse{Errors: []model.ErrorDetail{{Msg: msg}}}
}

// serverError logs err with the request logger and answers with a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse(msgServerError))
}

// decodeAndValidate reads a JSON body of at most 1MB into dst and validates
// it. On failure the response has been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(msgBodyTooLarge))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(msgInvalidBody))
		return false
	}

	if err := v.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Errors: verr.Fields})
			return false
		}
		serverError(w, r, err)
		return false
	}

	return true
}
