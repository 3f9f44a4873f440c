package httpx

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/target/golinks/internal/adapters/sessioncookie"
	domainauth "github.com/target/golinks/internal/domain/auth"
	"github.com/target/golinks/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context) (domainauth.HandshakeState, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (domainauth.Identity, error)
}

// AuthHandlers provides HTTP handlers for the sign-on handshake.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Sessions     *sessioncookie.SessionCodec
	Handshakes   *sessioncookie.HandshakeCodec
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles login initiation.
// GET /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	// Already signed in: straight to the admin page.
	if CallerFromContext(r.Context()).Authenticated {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	hs, err := h.Svc.BeginLogin(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	sealed, err := h.Handshakes.Encode(hs)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	// The handshake state rides an encrypted cookie; no server-side record.
	h.setCookie(w, r, cookieParams{
		Name:   sessioncookie.HandshakeCookieName,
		Value:  sealed,
		MaxAge: h.Handshakes.TTLSeconds(),
	})
	http.Redirect(w, r, hs.AuthURL, http.StatusFound)
}

// Callback handles the provider redirect back to us.
// GET /callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	// Already signed in: the callback is a no-op.
	if CallerFromContext(r.Context()).Authenticated {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	hs, ok := h.consumeHandshake(w, r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// The state echoed in the query must match the one sealed in the cookie
	// before the provider is contacted. A mismatch means the callback was not
	// produced by our redirect.
	state := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(state), []byte(hs.State)) != 1 {
		h.logger().WarnContext(r.Context(), "callback state mismatch")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	identity, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		Nonce: hs.Nonce,
	})
	if err != nil {
		// Verification failure sends the user back to the anonymous landing
		// page; it is never fatal.
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	sealed, err := h.Sessions.Encode(identity)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session encode failed", "error", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.setCookie(w, r, cookieParams{
		Name:   sessioncookie.SessionCookieName,
		Value:  sealed,
		MaxAge: h.Sessions.TTLSeconds(),
	})
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// Logout clears the session cookie.
// POST /api/v1/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, r, sessioncookie.SessionCookieName)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// consumeHandshake reads and decodes the handshake cookie, deleting it
// regardless of outcome so the state is single-use.
func (h *AuthHandlers) consumeHandshake(w http.ResponseWriter, r *http.Request) (domainauth.HandshakeState, bool) {
	cookie, err := r.Cookie(sessioncookie.HandshakeCookieName)
	if err != nil {
		return domainauth.HandshakeState{}, false
	}
	h.clearCookie(w, r, sessioncookie.HandshakeCookieName)

	hs, err := h.Handshakes.Decode(cookie.Value)
	if err != nil {
		h.logger().WarnContext(r.Context(), "handshake cookie rejected", "error", err)
		return domainauth.HandshakeState{}, false
	}
	return hs, true
}

// cookieParams groups values needed to set a cookie.
type cookieParams struct {
	Name   string
	Value  string
	MaxAge int
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, p cookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   p.MaxAge,
	})
}

// clearCookie clears a cookie by setting it to expire immediately. It mirrors
// the attributes used when setting cookies to maximize compatibility across
// browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
