// Package apikey is the shared-secret auth gate for HTTP deployments.
package apikey

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// HeaderLookup is the capability the gate needs from a transport: the
// ability to look up a request header by name. Each transport that can
// carry headers implements it; transports that cannot (stdio) simply
// never put one in the context.
type HeaderLookup interface {
	LookupHeader(name string) (string, bool)
}

// UnauthorizedError reports a missing or invalid credential. Calls
// failing the gate short-circuit before reaching the execution engine.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Reason
}

// Guard compares a presented credential against the configured shared
// secret. A zero Key disables the gate: every call is authorized.
type Guard struct {
	Key         string
	Header      string
	AllowBearer bool
}

// Check resolves a credential from headers and compares it against the
// configured key. The configured header is consulted first; when it is
// absent and AllowBearer is set, an "Authorization: Bearer <token>"
// header is accepted instead. A nil headers value while a key is
// configured is itself unauthorized — a transport without request
// headers must not silently pass the gate.
func (g Guard) Check(headers HeaderLookup) error {
	if g.Key == "" {
		return nil
	}
	if headers == nil {
		return &UnauthorizedError{Reason: "no request headers available"}
	}
	cred, ok := headers.LookupHeader(g.Header)
	if !ok && g.AllowBearer {
		cred, ok = bearerToken(headers)
	}
	if !ok {
		return &UnauthorizedError{Reason: "missing API key"}
	}
	if subtle.ConstantTimeCompare([]byte(cred), []byte(g.Key)) != 1 {
		return &UnauthorizedError{Reason: "invalid API key"}
	}
	return nil
}

// bearerToken extracts the token from an Authorization: Bearer header.
// The scheme match is case-insensitive and the token is trimmed.
func bearerToken(headers HeaderLookup) (string, bool) {
	auth, ok := headers.LookupHeader("Authorization")
	if !ok {
		return "", false
	}
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(auth[7:])
	return token, token != ""
}

// HTTPHeaders adapts http.Header to HeaderLookup. An empty header
// value counts as absent.
type HTTPHeaders http.Header

func (h HTTPHeaders) LookupHeader(name string) (string, bool) {
	v := http.Header(h).Get(name)
	return v, v != ""
}

type ctxKey struct{}

// WithHeaders stores a HeaderLookup in the context for tool handlers.
func WithHeaders(ctx context.Context, headers HeaderLookup) context.Context {
	return context.WithValue(ctx, ctxKey{}, headers)
}

// FromContext recovers the HeaderLookup stored by WithHeaders, if any.
func FromContext(ctx context.Context) (HeaderLookup, bool) {
	headers, ok := ctx.Value(ctxKey{}).(HeaderLookup)
	return headers, ok
}

// Middleware stores each inbound request's headers in the request
// context so tool handlers behind the MCP server can run the gate.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithHeaders(r.Context(), HTTPHeaders(r.Header))))
	})
}
