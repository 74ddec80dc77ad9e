package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxCommentLength = 2000

// Service orchestrates validation and persistence for place comments.
type Service struct {
	repo Repository
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add validates and persists a new comment by the given author.
func (s *Service) Add(ctx context.Context, placeID, authorID uuid.UUID, input AddCommentInput) (Comment, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return Comment{}, &ValidationError{Message: "comment text is required"}
	}
	if len(text) > maxCommentLength {
		return Comment{}, &ValidationError{Message: fmt.Sprintf("comment text exceeds %d characters", maxCommentLength)}
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return Comment{}, &ValidationError{Message: "rating must be between 1 and 5"}
	}

	comment := Comment{
		ID:        uuid.New(),
		PlaceID:   placeID,
		AuthorID:  authorID,
		Text:      text,
		Rating:    input.Rating,
		CreatedAt: time.Now().UTC(),
	}

	return s.repo.Create(ctx, comment)
}

// Get returns a comment by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Comment, error) {
	return s.repo.Get(ctx, id)
}

// ListByPlace returns all comments for a place, newest first.
func (s *Service) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]Comment, error) {
	return s.repo.ListByPlace(ctx, placeID)
}

// Delete removes a comment by ID.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
