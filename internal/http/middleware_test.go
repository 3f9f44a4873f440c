package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/golinks/internal/adapters/sessioncookie"
	domainauth "github.com/target/golinks/internal/domain/auth"
)

func TestAuthenticate_ValidSessionCookie(t *testing.T) {
	sessions, _ := newTestCodecs(t)
	token, err := sessions.Encode(domainauth.Identity{ID: "user-1"})
	require.NoError(t, err)

	var got Caller
	handler := Authenticate(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CallerFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.SessionCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, got.Authenticated)
	assert.Equal(t, "user-1", got.Identity.ID)
}

func TestAuthenticate_MissingCookieIsAnonymous(t *testing.T) {
	sessions, _ := newTestCodecs(t)

	var got Caller
	handler := Authenticate(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CallerFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, got.Authenticated)
}

func TestAuthenticate_TamperedCookieIsAnonymous(t *testing.T) {
	sessions, _ := newTestCodecs(t)

	var got Caller
	handler := Authenticate(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CallerFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.SessionCookieName, Value: "v1.Zm9yZ2Vk"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, got.Authenticated, "forged cookie must read as anonymous")
}

func TestLogging_SetsRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
