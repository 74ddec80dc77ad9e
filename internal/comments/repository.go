package comments

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for comment persistence.
type Repository interface {
	Create(ctx context.Context, comment Comment) (Comment, error)
	Get(ctx context.Context, id uuid.UUID) (Comment, error)
	ListByPlace(ctx context.Context, placeID uuid.UUID) ([]Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
