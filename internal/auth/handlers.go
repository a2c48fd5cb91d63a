package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"example.com/notes-web-pz16/internal/session"
	"example.com/notes-web-pz16/internal/stringsx"
	"example.com/notes-web-pz16/internal/users"
)

// Authenticator verifies login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (users.User, error)
}

type Handlers struct {
	auth     Authenticator
	codec    *session.Codec
	resolver *Resolver
}

func NewHandlers(auth Authenticator, codec *session.Codec, resolver *Resolver) *Handlers {
	return &Handlers{auth: auth, codec: codec, resolver: resolver}
}

func (h *Handlers) Register(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.With(h.resolver.Require(RejectJSON)).Get("/me", h.me)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")

	fields := map[string]string{}
	if stringsx.IsEmpty(email) {
		fields["email"] = "email is required"
	}
	if password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": fields})
		return
	}

	u, err := h.auth.Authenticate(r.Context(), email, password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	token, err := h.codec.Encode(u.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	h.codec.SetCookie(w, token)
	http.Redirect(w, r, safeRedirect(r.PostForm.Get("redirectTo")), http.StatusFound)
}

// me returns the record behind the current session. A valid session
// whose account has been deleted is reported as gone, not as anonymous.
func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserFromContext(r.Context())

	u, err := h.resolver.User(r.Context(), userID)
	if errors.Is(err, users.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.codec.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// safeRedirect only honors local paths, so a crafted redirectTo cannot
// send the client to another origin.
func safeRedirect(to string) string {
	if strings.HasPrefix(to, "/") && !strings.HasPrefix(to, "//") {
		return to
	}
	return "/notes"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
