// Package auth resolves the requesting user from the session cookie and
// guards routes that need one.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"example.com/notes-web-pz16/internal/session"
	"example.com/notes-web-pz16/internal/users"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserFromContext extracts the authenticated user id set by Require.
func UserFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// FailureMode selects what Require does with an anonymous request.
type FailureMode int

const (
	// RedirectToLogin sends the client to the login page, preserving the
	// originally requested path in redirectTo.
	RedirectToLogin FailureMode = iota
	// RejectJSON answers 401 with a JSON body, for non-interactive calls.
	RejectJSON
)

type Resolver struct {
	codec *session.Codec
	users users.Store
}

func NewResolver(codec *session.Codec, store users.Store) *Resolver {
	return &Resolver{codec: codec, users: store}
}

// Optional decodes the session cookie. It returns (0, false) for a
// missing, expired or tampered cookie and never fails the request.
func (rs *Resolver) Optional(r *http.Request) (int64, bool) {
	c, err := r.Cookie(session.CookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	return rs.codec.Decode(c.Value)
}

// Require is a middleware that rejects anonymous requests according to
// the given mode and otherwise attaches the user id to the context.
func (rs *Resolver) Require(mode FailureMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := rs.Optional(r)
			if !ok {
				deny(w, r, mode)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, mode FailureMode) {
	if mode == RedirectToLogin {
		target := "/login?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthenticated"})
}

// User loads the full record behind an already-resolved id. A valid
// session whose user has vanished yields users.ErrNotFound, which is a
// different condition from an anonymous request.
func (rs *Resolver) User(ctx context.Context, id int64) (users.User, error) {
	return rs.users.ByID(ctx, id)
}
