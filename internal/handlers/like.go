package handlers

import (
	"context"
	"net/http"
	"time"

	"member-directory-backend/internal/middleware"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"

	"github.com/go-chi/chi/v5"
)

type likeService interface {
	GetLike(ctx context.Context, sourceID, likedUsername string) (*models.Like, error)
	AddLike(ctx context.Context, sourceUsername, likedUsername string) (bool, error)
	RemoveLike(ctx context.Context, sourceUsername, likedUsername string) error
	ListLikes(ctx context.Context, params models.LikesParams) (*pagination.PagedList[models.LikeDTO], error)
}

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	likeService likeService
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(likeService likeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

// LikeStatus reports whether the caller likes a member
type LikeStatus struct {
	Liked     bool       `json:"liked"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// GetLike handles GET /api/v1/likes/{username}
func (h *LikeHandler) GetLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	like, err := h.likeService.GetLike(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "username"))
	if err != nil {
		respondAppError(w, r, err, "Failed to get like")
		return
	}

	status := LikeStatus{}
	if like != nil {
		status.Liked = true
		status.CreatedAt = &like.CreatedAt
	}
	respondJSON(w, http.StatusOK, status)
}

// AddLike handles POST /api/v1/likes/{username}. A new like answers 201,
// liking the same member again answers 200.
func (h *LikeHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	created, err := h.likeService.AddLike(ctx, middleware.GetUsername(ctx), chi.URLParam(r, "username"))
	if err != nil {
		respondAppError(w, r, err, "Failed to add like")
		return
	}

	if created {
		w.WriteHeader(http.StatusCreated)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// RemoveLike handles DELETE /api/v1/likes/{username}
func (h *LikeHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.likeService.RemoveLike(ctx, middleware.GetUsername(ctx), chi.URLParam(r, "username")); err != nil {
		respondAppError(w, r, err, "Failed to remove like")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLikes handles GET /api/v1/likes
func (h *LikeHandler) ListLikes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := parsePageParams(r, defaultPage())
	if err != nil {
		respondAppError(w, r, err, "Invalid likes query")
		return
	}

	likes, err := h.likeService.ListLikes(ctx, models.LikesParams{
		Params:    page,
		UserID:    middleware.GetUserID(ctx),
		Predicate: r.URL.Query().Get("predicate"),
	})
	if err != nil {
		respondAppError(w, r, err, "Failed to list likes")
		return
	}

	respondPage(w, likes)
}
