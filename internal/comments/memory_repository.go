package comments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores comments in an in-process map, ideal for local
// development or tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	data  map[uuid.UUID]Comment
	order []uuid.UUID
}

// NewInMemoryRepository constructs an empty in-memory comment store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[uuid.UUID]Comment)}
}

// Create stores a new comment.
func (r *InMemoryRepository) Create(_ context.Context, comment Comment) (Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[comment.ID] = comment
	r.order = append(r.order, comment.ID)
	return comment, nil
}

// Get returns a comment by ID.
func (r *InMemoryRepository) Get(_ context.Context, id uuid.UUID) (Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.data[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return comment, nil
}

// ListByPlace returns all comments for a place, newest first.
func (r *InMemoryRepository) ListByPlace(_ context.Context, placeID uuid.UUID) ([]Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Comment, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		if comment, ok := r.data[r.order[i]]; ok && comment.PlaceID == placeID {
			out = append(out, comment)
		}
	}
	return out, nil
}

// Delete removes a comment by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
