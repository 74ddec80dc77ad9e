package comments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a comment cannot be located.
var ErrNotFound = errors.New("comment not found")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ValidationError wraps a validation message so callers can distinguish
// client errors from internal failures.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Comment is a visitor's note on a place, optionally carrying a rating.
type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PlaceID   uuid.UUID `db:"place_id" json:"placeId"`
	AuthorID  uuid.UUID `db:"author_id" json:"authorId"`
	Text      string    `db:"text" json:"text"`
	Rating    *int      `db:"rating" json:"rating,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AddCommentInput captures the data needed to add a comment to a place.
type AddCommentInput struct {
	Text   string `json:"text"`
	Rating *int   `json:"rating,omitempty"`
}
