package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/golinks/internal/adapters/sessioncookie"
	domainauth "github.com/target/golinks/internal/domain/auth"
)

func newTestRouter(t *testing.T, auth *mockAuthService, links *mockLinkService) (http.Handler, *sessioncookie.SessionCodec) {
	t.Helper()
	sessions, handshakes := newTestCodecs(t)
	router, err := NewRouter(RouterServices{
		Auth:       auth,
		Links:      links,
		Sessions:   sessions,
		Handshakes: handshakes,
		ShortURL:   testShortURL,
	})
	require.NoError(t, err)
	return router, sessions
}

func TestRouter_LiteralRoutesWinOverResolve(t *testing.T) {
	links := &mockLinkService{}
	router, _ := newTestRouter(t, &mockAuthService{}, links)

	// /login must hit the login handler, not resolve a link named "login".
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://idp.example.com/auth?state=state-1", rec.Header().Get("Location"))
}

func TestRouter_ResolveCatchesSingleSegment(t *testing.T) {
	links := &mockLinkService{
		resolveFunc: func(_ context.Context, name string) (string, error) {
			assert.Equal(t, "docs", name)
			return "https://example.com/docs", nil
		},
	}
	router, _ := newTestRouter(t, &mockAuthService{}, links)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/docs", rec.Header().Get("Location"))
}

func TestRouter_ResolveIsPublic(t *testing.T) {
	// Link resolution needs no session cookie at all.
	links := &mockLinkService{
		resolveFunc: func(context.Context, string) (string, error) {
			return "https://example.com/docs", nil
		},
	}
	router, _ := newTestRouter(t, &mockAuthService{}, links)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestRouter_RootAnonymousGoesToLogin(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockLinkService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_RootWithSessionGoesToAdmin(t *testing.T) {
	router, sessions := newTestRouter(t, &mockAuthService{}, &mockLinkService{})

	token, err := sessions.Encode(domainauth.Identity{ID: "user-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestRouter_AddThroughSessionCookie(t *testing.T) {
	links := &mockLinkService{}
	router, sessions := newTestRouter(t, &mockAuthService{}, links)

	token, err := sessions.Encode(domainauth.Identity{ID: "user-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/add",
		strings.NewReader(`{"url":"https://example.com/docs"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessioncookie.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, links.registerCalls)
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockLinkService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_MultiSegmentPathIs404(t *testing.T) {
	router, _ := newTestRouter(t, &mockAuthService{}, &mockLinkService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/b", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
