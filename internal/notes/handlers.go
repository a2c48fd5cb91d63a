package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"example.com/notes-web-pz16/internal/auth"
)

// NoteService is the ownership-checked surface consumed by the handlers.
type NoteService interface {
	Create(ctx context.Context, requesterID int64, title, description string) (Note, error)
	Get(ctx context.Context, requesterID, noteID int64) (Note, error)
	List(ctx context.Context, requesterID int64, search string) ([]Note, error)
	ToggleFavorite(ctx context.Context, requesterID, noteID int64) (Note, error)
	Update(ctx context.Context, requesterID, noteID int64, fields UpdateFields) (Note, error)
	Delete(ctx context.Context, requesterID, noteID int64) error
}

type Handlers struct {
	svc      NoteService
	resolver *auth.Resolver
}

func NewHandlers(svc NoteService, resolver *auth.Resolver) *Handlers {
	return &Handlers{svc: svc, resolver: resolver}
}

func (h *Handlers) Register(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		// page loads redirect anonymous users to the login form,
		// form posts answer with a structured 401
		r.With(h.resolver.Require(auth.RedirectToLogin)).Get("/", h.index)
		r.With(h.resolver.Require(auth.RejectJSON)).Post("/", h.action)
		r.With(h.resolver.Require(auth.RedirectToLogin)).Get("/{id}", h.detail)
	})
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	search := r.URL.Query().Get("search")

	items, err := h.svc.List(r.Context(), userID, search)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// action dispatches a multi-purpose form submission on its intent field.
func (h *Handlers) action(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}
	userID, _ := auth.UserFromContext(r.Context())

	switch r.PostForm.Get("intent") {
	case "delete":
		h.deleteNote(w, r, userID)
	case "toggleFavorite":
		h.toggleFavorite(w, r, userID)
	default:
		h.createNote(w, r, userID)
	}
}

func (h *Handlers) createNote(w http.ResponseWriter, r *http.Request, userID int64) {
	// owner comes from the session only; any posted owner field is ignored
	n, err := h.svc.Create(r.Context(), userID, r.PostForm.Get("title"), r.PostForm.Get("description"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "note": n})
}

func (h *Handlers) toggleFavorite(w http.ResponseWriter, r *http.Request, userID int64) {
	noteID, ok := formNoteID(w, r)
	if !ok {
		return
	}
	n, err := h.svc.ToggleFavorite(r.Context(), userID, noteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": n})
}

func (h *Handlers) deleteNote(w http.ResponseWriter, r *http.Request, userID int64) {
	noteID, ok := formNoteID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID, noteID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "note deleted"})
}

func (h *Handlers) detail(w http.ResponseWriter, r *http.Request) {
	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid note id"})
		return
	}
	userID, _ := auth.UserFromContext(r.Context())

	n, err := h.svc.Get(r.Context(), userID, noteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func formNoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PostForm.Get("noteId"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid note id"})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": ve.Fields})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "note not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
