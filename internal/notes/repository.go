package notes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// foreign_key_violation
const pgFKViolation = "23503"

// Repository holds owner-scoped data access. It carries no authorization
// logic of its own: mutations simply refuse to match rows whose user_id
// differs, inside a single statement.
type Repository struct {
	db *sql.DB

	stmtGet    *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtDelete *sql.Stmt
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	get, err := db.PrepareContext(ctx, `
		SELECT id, user_id, title, description, favorite, created_at
		FROM notes
		WHERE id = $1
	`)
	if err != nil {
		return nil, err
	}

	upd, err := db.PrepareContext(ctx, `
		UPDATE notes
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    favorite = COALESCE($3, favorite)
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, title, description, favorite, created_at
	`)
	if err != nil {
		return nil, err
	}

	del, err := db.PrepareContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`)
	if err != nil {
		return nil, err
	}

	return &Repository{
		db:         db,
		stmtGet:    get,
		stmtUpdate: upd,
		stmtDelete: del,
	}, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtUpdate, r.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

// Insert assigns id and created_at. A missing owner surfaces as
// ErrConstraint instead of a raw SQLSTATE.
func (r *Repository) Insert(ctx context.Context, ownerID int64, title, description string) (Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notes (user_id, title, description) VALUES ($1, $2, $3)
		RETURNING id, user_id, title, description, favorite, created_at
	`, ownerID, title, description).Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Favorite, &n.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgFKViolation {
			return Note{}, ErrConstraint
		}
		return Note{}, err
	}
	return n, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (Note, error) {
	var n Note
	err := r.stmtGet.QueryRowContext(ctx, id).Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Favorite, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, sql.ErrNoRows
	}
	return n, err
}

// ListByOwner returns the owner's notes in creation order.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64, p ListParams) ([]Note, error) {
	if p.Limit <= 0 || p.Limit > MaxListLimit {
		p.Limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, favorite, created_at
		FROM notes
		WHERE user_id = $1
		ORDER BY id
		LIMIT $2
	`, ownerID, p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

// Update applies only the non-nil fields. The WHERE clause re-checks the
// owner, so a row that changed hands between check and act is simply not
// matched and sql.ErrNoRows comes back.
func (r *Repository) Update(ctx context.Context, id, ownerID int64, fields UpdateFields) (Note, error) {
	var n Note
	err := r.stmtUpdate.QueryRowContext(ctx, fields.Title, fields.Description, fields.Favorite, id, ownerID).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Favorite, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, sql.ErrNoRows
	}
	return n, err
}

// Delete reports whether a row matching both id and owner was removed.
func (r *Repository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := r.stmtDelete.ExecContext(ctx, id, ownerID)
	if err != nil {
		return false, err
	}
	a, _ := res.RowsAffected()
	return a > 0, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	out := make([]Note, 0, 32)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Favorite, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
