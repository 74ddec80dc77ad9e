package http

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"greenmap/internal/auth"
	"greenmap/internal/comments"
)

// CommentHandler exposes place comment endpoints. All of them sit behind the
// bearer-token middleware; the author is resolved from the token subject.
type CommentHandler struct {
	service *comments.Service
	users   auth.Repository
	logger  *slog.Logger
}

// NewCommentHandler creates a handler.
func NewCommentHandler(service *comments.Service, users auth.Repository, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{service: service, users: users, logger: logger}
}

// Add handles POST /api/places/{placeID}/comments.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	placeID, ok := parseUUIDParam(w, r, "placeID")
	if !ok {
		return
	}

	user, ok := h.requestUser(w, r)
	if !ok {
		return
	}

	var input comments.AddCommentInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeJSONError(w, err)
		return
	}

	comment, err := h.service.Add(r.Context(), placeID, user.ID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// List handles GET /api/places/{placeID}/comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	placeID, ok := parseUUIDParam(w, r, "placeID")
	if !ok {
		return
	}

	list, err := h.service.ListByPlace(r.Context(), placeID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": list})
}

// Get handles GET /api/places/{placeID}/comments/{id}.
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	comment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /api/places/{placeID}/comments/{id}.
// The author may delete their own comment; moderators and admins may delete
// any comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	user, ok := h.requestUser(w, r)
	if !ok {
		return
	}

	comment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if comment.AuthorID != user.ID && user.Role == auth.RoleUser {
		writeError(w, http.StatusForbidden, "not allowed to delete this comment")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requestUser loads the account behind the access token's subject.
func (h *CommentHandler) requestUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		unauthorized(w)
		return nil, false
	}

	user, err := h.users.FindUserByEmail(r.Context(), identity.Subject)
	if err != nil {
		h.logger.Error("find user for request", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
		return nil, false
	}
	if user == nil {
		unauthorized(w)
		return nil, false
	}
	if user.Status != auth.StatusActivated {
		writeError(w, http.StatusForbidden, "account is not active")
		return nil, false
	}

	return user, true
}

func (h *CommentHandler) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, comments.ErrNotFound) {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	if errors.Is(err, comments.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("service error", "error", err)
	writeError(w, http.StatusInternalServerError, "unexpected error")
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	value := chi.URLParam(r, key)
	id, err := uuid.Parse(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
