package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-go/internal/metrics"
	"github.com/devconnector/devconnector-go/internal/model"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenHeader is the request header that carries the token.
const TokenHeader = "x-auth-token"

// Guard responses.
const (
	MsgNoToken      = "No token, authorization denied"
	MsgInvalidToken = "Token is not valid"
)

// TokenVerifier validates a token and returns the account id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Guard returns middleware that admits only requests carrying a valid token
// in the x-auth-token header, or as a Bearer token in Authorization. The
// verified account id is stored in the request context.
func Guard(tokens TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := zerolog.Ctx(r.Context())

			token := tokenFromRequest(r)
			if token == "" {
				m.TokenVerification(metrics.ResultMissing)
				log.Debug().Msg("request rejected: no token")
				writeJSONError(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				m.TokenVerification(metrics.ResultInvalid)
				log.Debug().Err(err).Msg("request rejected: invalid token")
				writeJSONError(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}
			m.TokenVerification(metrics.ResultSuccess)

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			userLog := log.With().Str("user_id", userID).Logger()
			ctx = userLog.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a copy of ctx carrying userID, as Guard does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Errors: []model.ErrorDetail{{Msg: msg}},
	})
}
