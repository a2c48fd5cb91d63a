package notes

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("note not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConstraint = errors.New("owner does not exist")
	ErrInternal   = errors.New("internal error")
)

// ValidationError carries per-field messages for client-fixable input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}
