package httpx

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/target/golinks/internal/adapters/sessioncookie"
)

// RouterServices holds the services and codecs needed by the HTTP router.
type RouterServices struct {
	Auth       AuthServiceInterface
	Links      LinkServiceInterface
	Sessions   *sessioncookie.SessionCodec
	Handshakes *sessioncookie.HandshakeCodec
	// ShortURL renders the public URL for a short name.
	ShortURL     func(name string) string
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router. Every route runs behind
// the Authenticate middleware; handlers dispatch on the resulting caller.
func NewRouter(services RouterServices) (http.Handler, error) {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Sessions:     services.Sessions,
		Handshakes:   services.Handshakes,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	linkHandlers, err := NewLinkHandlers(services.Links, services.ShortURL, services.Logger)
	if err != nil {
		return nil, err
	}

	mux.HandleFunc("GET /{$}", linkHandlers.Root)
	mux.HandleFunc("GET /login", authHandlers.Login)
	mux.HandleFunc("GET /callback", authHandlers.Callback)
	mux.HandleFunc("GET /admin", linkHandlers.Admin)
	mux.HandleFunc("POST /api/v1/add", linkHandlers.Add)
	mux.HandleFunc("POST /api/v1/logout", authHandlers.Logout)
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	// Single-segment catch-all; literal routes above take precedence.
	mux.HandleFunc("GET /{name}", linkHandlers.Resolve)

	return Authenticate(services.Sessions)(mux), nil
}

// Middleware assembles the outer middleware chain around a router.
func Middleware(logger *slog.Logger, next http.Handler) http.Handler {
	return Recover(logger)(Logging(logger)(next))
}

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
