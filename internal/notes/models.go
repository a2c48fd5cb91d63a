package notes

import "time"

type Note struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OwnedBy is the single ownership predicate. The repository applies the
// same rule inside its SQL so a mutation can never outrun the check.
func (n Note) OwnedBy(userID int64) bool {
	return n.UserID == userID
}

// UpdateFields carries a partial update; nil fields are left untouched.
type UpdateFields struct {
	Title       *string
	Description *string
	Favorite    *bool
}

type ListParams struct {
	Limit int
}
