package notes

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"example.com/notes-web-pz16/internal/stringsx"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 10000
)

// Store is an abstraction over the notes storage.
// It allows unit-testing the service without a real database.
type Store interface {
	Insert(ctx context.Context, ownerID int64, title, description string) (Note, error)
	FindByID(ctx context.Context, id int64) (Note, error)
	ListByOwner(ctx context.Context, ownerID int64, p ListParams) ([]Note, error)
	Update(ctx context.Context, id, ownerID int64, fields UpdateFields) (Note, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
}

// Service is the ownership gate: every operation takes the requester id
// resolved from the session, never from the payload, and refuses to touch
// notes the requester does not own.
type Service struct {
	repo Store
	log  *slog.Logger
}

func NewService(repo Store, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates input and stores a note owned by the requester.
func (s *Service) Create(ctx context.Context, requesterID int64, title, description string) (Note, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	fields := map[string]string{}
	validateTitle(title, fields)
	if stringsx.IsEmpty(description) {
		fields["description"] = "description is required"
	} else if utf8.RuneCountInString(description) > maxDescriptionLen {
		fields["description"] = "description must be at most 10000 characters"
	}
	if len(fields) > 0 {
		return Note{}, &ValidationError{Fields: fields}
	}

	n, err := s.repo.Insert(ctx, requesterID, title, description)
	if errors.Is(err, ErrConstraint) {
		s.log.Error("create note: owner row missing", "user_id", requesterID, "err", err)
		return Note{}, ErrInternal
	}
	if err != nil {
		s.log.Error("create note failed", "user_id", requesterID, "err", err)
		return Note{}, ErrInternal
	}
	return n, nil
}

// Get fetches a note the requester owns. Existence is checked before
// ownership so a nonexistent note is ErrNotFound, not ErrForbidden.
func (s *Service) Get(ctx context.Context, requesterID, noteID int64) (Note, error) {
	n, err := s.repo.FindByID(ctx, noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		s.log.Error("get note failed", "note_id", noteID, "err", err)
		return Note{}, ErrInternal
	}
	if !n.OwnedBy(requesterID) {
		return Note{}, ErrForbidden
	}
	return n, nil
}

// List returns the requester's notes, filtered by a case-insensitive
// substring over title or description when search is non-empty.
func (s *Service) List(ctx context.Context, requesterID int64, search string) ([]Note, error) {
	items, err := s.repo.ListByOwner(ctx, requesterID, ListParams{Limit: MaxListLimit})
	if err != nil {
		s.log.Error("list notes failed", "user_id", requesterID, "err", err)
		return nil, ErrInternal
	}

	search = stringsx.Normalize(search)
	if search == "" {
		return items, nil
	}

	out := make([]Note, 0, len(items))
	for _, n := range items {
		if stringsx.ContainsFold(n.Title, search) || stringsx.ContainsFold(n.Description, search) {
			out = append(out, n)
		}
	}
	return out, nil
}

// ToggleFavorite flips the favorite flag on an owned note.
func (s *Service) ToggleFavorite(ctx context.Context, requesterID, noteID int64) (Note, error) {
	n, err := s.Get(ctx, requesterID, noteID)
	if err != nil {
		return Note{}, err
	}

	fav := !n.Favorite
	updated, err := s.repo.Update(ctx, noteID, requesterID, UpdateFields{Favorite: &fav})
	if errors.Is(err, sql.ErrNoRows) {
		// row vanished or changed owner between check and act
		s.log.Error("toggle favorite lost race", "note_id", noteID, "user_id", requesterID)
		return Note{}, ErrInternal
	}
	if err != nil {
		s.log.Error("toggle favorite failed", "note_id", noteID, "err", err)
		return Note{}, ErrInternal
	}
	return updated, nil
}

// Update applies the provided fields to an owned note.
func (s *Service) Update(ctx context.Context, requesterID, noteID int64, fields UpdateFields) (Note, error) {
	errs := map[string]string{}
	if fields.Title != nil {
		trimmed := strings.TrimSpace(*fields.Title)
		fields.Title = &trimmed
		validateTitle(trimmed, errs)
	}
	if fields.Description != nil {
		trimmed := strings.TrimSpace(*fields.Description)
		fields.Description = &trimmed
		if stringsx.IsEmpty(trimmed) {
			errs["description"] = "description is required"
		} else if utf8.RuneCountInString(trimmed) > maxDescriptionLen {
			errs["description"] = "description must be at most 10000 characters"
		}
	}
	if len(errs) > 0 {
		return Note{}, &ValidationError{Fields: errs}
	}

	if _, err := s.Get(ctx, requesterID, noteID); err != nil {
		return Note{}, err
	}

	updated, err := s.repo.Update(ctx, noteID, requesterID, fields)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Error("update note lost race", "note_id", noteID, "user_id", requesterID)
		return Note{}, ErrInternal
	}
	if err != nil {
		s.log.Error("update note failed", "note_id", noteID, "err", err)
		return Note{}, ErrInternal
	}
	return updated, nil
}

// Delete removes an owned note.
func (s *Service) Delete(ctx context.Context, requesterID, noteID int64) error {
	if _, err := s.Get(ctx, requesterID, noteID); err != nil {
		return err
	}

	ok, err := s.repo.Delete(ctx, noteID, requesterID)
	if err != nil {
		s.log.Error("delete note failed", "note_id", noteID, "err", err)
		return ErrInternal
	}
	if !ok {
		s.log.Error("delete note lost race", "note_id", noteID, "user_id", requesterID)
		return ErrInternal
	}
	return nil
}

func validateTitle(title string, fields map[string]string) {
	if stringsx.IsEmpty(title) {
		fields["title"] = "title is required"
		return
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		fields["title"] = "title must be at most 255 characters"
	}
}
