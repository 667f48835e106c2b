package handlers

import (
	"encoding/json"
	"net/http"

	"member-directory-backend/internal/middleware"
	"member-directory-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles member directory and profile requests
type UserHandler struct {
	userService memberService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService memberService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// PushTokenRequest represents the request body for registering a device
type PushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// ListMembers handles GET /api/v1/users
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := middleware.GetUsername(ctx)

	params, err := parseUserParams(r)
	if err != nil {
		respondAppError(w, r, err, "Invalid member query")
		return
	}

	members, err := h.userService.ListMembers(ctx, username, params)
	if err != nil {
		respondAppError(w, r, err, "Failed to list members")
		return
	}

	respondPage(w, members)
}

// GetMember handles GET /api/v1/users/{username}
func (h *UserHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.userService.GetMember(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondAppError(w, r, err, "Failed to get member")
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// UpdateMember handles PUT /api/v1/users
func (h *UserHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := middleware.GetUsername(ctx)

	var req models.MemberUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdateMember(ctx, username, req); err != nil {
		respondAppError(w, r, err, "Failed to update member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdatePushToken handles PUT /api/v1/users/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		respondAppError(w, r, err, "Failed to update push token")
		return
	}

	log.Info().
		Str("user_id", userID).
		Bool("registered", req.PushToken != "").
		Msg("Push token updated")

	w.WriteHeader(http.StatusNoContent)
}

func parseUserParams(r *http.Request) (models.UserParams, error) {
	params := models.NewUserParams()

	page, err := parsePageParams(r, params.Params)
	if err != nil {
		return params, err
	}
	params.Params = page

	q := r.URL.Query()
	params.Gender = q.Get("gender")
	if orderBy := q.Get("orderBy"); orderBy != "" {
		params.OrderBy = orderBy
	}
	if params.MinAge, err = queryInt(r, "minAge", params.MinAge); err != nil {
		return params, err
	}
	if params.MaxAge, err = queryInt(r, "maxAge", params.MaxAge); err != nil {
		return params, err
	}
	return params, nil
}
