package httpx

import (
	"context"

	domainauth "github.com/target/golinks/internal/domain/auth"
)

// Caller is the authentication capability attached to each request by the
// Authenticate middleware. It is a tagged value: either an authenticated
// identity or the anonymous caller. Handlers dispatch on Authenticated to
// pick the authenticated or fallback behavior; a missing or invalid session
// cookie is never an error at this layer.
type Caller struct {
	Identity      domainauth.Identity
	Authenticated bool
}

// AuthenticatedCaller returns the capability for a verified identity.
func AuthenticatedCaller(identity domainauth.Identity) Caller {
	return Caller{Identity: identity, Authenticated: true}
}

// AnonymousCaller returns the capability for an unauthenticated request.
func AnonymousCaller() Caller {
	return Caller{}
}

// callerKey is an unexported context key type to avoid collisions across packages.
type callerKey struct{}

// SetCallerInContext returns a child context carrying the given caller.
func SetCallerInContext(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller established for this request. Requests
// that never passed the Authenticate middleware are anonymous.
func CallerFromContext(ctx context.Context) Caller {
	if caller, ok := ctx.Value(callerKey{}).(Caller); ok {
		return caller
	}
	return AnonymousCaller()
}
