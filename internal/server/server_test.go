package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devconnector/devconnector-go/internal/config"
	"github.com/devconnector/devconnector-go/internal/crypto"
	"github.com/devconnector/devconnector-go/internal/metrics"
	"github.com/devconnector/devconnector-go/internal/model"
	"github.com/devconnector/devconnector-go/internal/repository/repotest"
)

func newTestServer(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tokens, err := crypto.NewTokenService("test-secret", 100*time.Hour, "devconnector")
	require.NoError(t, err)
	store, _, _ := repotest.NewStore()

	cfg := config.Config{Port: "0", Env: "test", RateLimitRPS: rps, RateLimitBurst: burst}
	srv, err := New(ctx, cfg, Deps{
		Store:   store,
		Hasher:  crypto.NewHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
		Tokens:  tokens,
		Metrics: metrics.New(),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return srv.Handler()
}

type call struct {
	method string
	path   string
	body   string
	token  string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("x-auth-token", c.token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tokenFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp model.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func errorMsg(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)
	return resp.Errors[0].Msg
}

func TestRegisterLoginAndProtectedRoute(t *testing.T) {
	h := newTestServer(t, 100, 100)

	registered := tokenFrom(t, do(t, h, call{
		method: http.MethodPost, path: "/api/users",
		body: `{"name":"Ann","email":"a@x.com","password":"secret1"}`,
	}))

	loggedIn := tokenFrom(t, do(t, h, call{
		method: http.MethodPost, path: "/api/auth",
		body: `{"email":"a@x.com","password":"secret1"}`,
	}))

	for _, token := range []string{registered, loggedIn} {
		rec := do(t, h, call{method: http.MethodGet, path: "/api/auth", token: token})
		require.Equal(t, http.StatusOK, rec.Code)

		var user map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "a@x.com", user["email"])
		assert.Equal(t, "Ann", user["name"])
		assert.NotEmpty(t, user["_id"])
		assert.NotContains(t, user, "password")
		assert.NotContains(t, rec.Body.String(), "argon2")
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	h := newTestServer(t, 100, 100)
	tokenFrom(t, do(t, h, call{
		method: http.MethodPost, path: "/api/users",
		body: `{"name":"Ann","email":"a@x.com","password":"secret1"}`,
	}))

	wrongPassword := do(t, h, call{method: http.MethodPost, path: "/api/auth", body: `{"email":"a@x.com","password":"wrong!"}`})
	unknownEmail := do(t, h, call{method: http.MethodPost, path: "/api/auth", body: `{"email":"z@x.com","password":"secret1"}`})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid Credentials", errorMsg(t, wrongPassword))
}

func TestProtectedRoutesRejectMissingAndInvalidTokens(t *testing.T) {
	h := newTestServer(t, 100, 100)

	for _, path := range []string{"/api/auth", "/api/profile/me"} {
		missing := do(t, h, call{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, missing.Code, path)
		assert.Equal(t, "No token, authorization denied", errorMsg(t, missing))

		invalid := do(t, h, call{method: http.MethodGet, path: path, token: "abc.def.ghi"})
		assert.Equal(t, http.StatusUnauthorized, invalid.Code, path)
		assert.Equal(t, "Token is not valid", errorMsg(t, invalid))
	}
}

func TestProfileLifecycle(t *testing.T) {
	h := newTestServer(t, 100, 100)
	token := tokenFrom(t, do(t, h, call{
		method: http.MethodPost, path: "/api/users",
		body: `{"name":"Ann","email":"a@x.com","password":"secret1"}`,
	}))

	missing := do(t, h, call{method: http.MethodGet, path: "/api/profile/me", token: token})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "There is no profile for this user", errorMsg(t, missing))

	created := do(t, h, call{
		method: http.MethodPost, path: "/api/profile", token: token,
		body: `{"status":"Developer","skills":"Go, SQL ,,Docker","website":"www.Example.com","twitter":"twitter.com/ann"}`,
	})
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())

	rec := do(t, h, call{method: http.MethodGet, path: "/api/profile/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)

	var profile model.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, profile.Skills)
	assert.Equal(t, "https://example.com", profile.Website)
	assert.Equal(t, "https://twitter.com/ann", profile.Social.Twitter)
	assert.Equal(t, "Ann", profile.User.Name)
	assert.True(t, strings.HasPrefix(profile.User.Avatar, "https://www.gravatar.com/avatar/"))
}

func TestRegisterIsRateLimited(t *testing.T) {
	h := newTestServer(t, 0.001, 1)
	body := `{"name":"Ann","email":"a@x.com","password":"secret1"}`

	tokenFrom(t, do(t, h, call{method: http.MethodPost, path: "/api/users", body: body}))

	rec := do(t, h, call{method: http.MethodPost, path: "/api/auth", body: `{"email":"a@x.com","password":"secret1"}`})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestOperationalRoutes(t *testing.T) {
	h := newTestServer(t, 100, 100)

	root := do(t, h, call{method: http.MethodGet, path: "/"})
	assert.Equal(t, "API Running", root.Body.String())

	health := do(t, h, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, health.Code)

	notFound := do(t, h, call{method: http.MethodGet, path: "/api/nope"})
	assert.Equal(t, http.StatusNotFound, notFound.Code)

	do(t, h, call{method: http.MethodPost, path: "/api/auth", body: `{"email":"a@x.com","password":"nope"}`})
	do(t, h, call{method: http.MethodGet, path: "/api/auth"})

	scrape := do(t, h, call{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, scrape.Code)
	out := scrape.Body.String()
	assert.Contains(t, out, `auth_login_attempts_total{result="invalid"} 1`)
	assert.Contains(t, out, `auth_token_verifications_total{result="missing"} 1`)
	assert.Contains(t, out, `http_requests_total{method="POST",route="/api/auth",status="400"} 1`)
}

func TestProfileUpdateKeepsOmittedFields(t *testing.T) {
	h := newTestServer(t, 100, 100)
	token := tokenFrom(t, do(t, h, call{
		method: http.MethodPost, path: "/api/users",
		body: `{"name":"Ann","email":"a@x.com","password":"secret1"}`,
	}))

	first := do(t, h, call{
		method: http.MethodPost, path: "/api/profile", token: token,
		body: `{"status":"Junior","skills":["Go"],"company":"Acme","bio":"Gopher"}`,
	})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := do(t, h, call{
		method: http.MethodPost, path: "/api/profile", token: token,
		body: `{"status":"Senior","skills":"Go,SQL"}`,
	})
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	var profile model.ProfileResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &profile))
	assert.Equal(t, "Acme", profile.Company)
	assert.Equal(t, "Gopher", profile.Bio)
	assert.Equal(t, "Senior", profile.Status)
	assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
}
