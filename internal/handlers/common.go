package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/models"
	"member-directory-backend/internal/pagination"

	"github.com/rs/zerolog/log"
)

// PaginationHeader carries the page metadata of list responses
const PaginationHeader = "Pagination"

type memberService interface {
	ListMembers(ctx context.Context, currentUsername string, params models.UserParams) (*pagination.PagedList[models.MemberDTO], error)
	GetMember(ctx context.Context, username string) (*models.MemberDTO, error)
	UpdateMember(ctx context.Context, username string, update models.MemberUpdate) error
	UpdatePushToken(ctx context.Context, userID, pushToken string) error
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondAppError maps err to its HTTP status. Internal errors are logged
// and their details withheld from the client.
func respondAppError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	appErr := apperr.As(err)
	status := appErr.HTTPStatus()

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg(msg)

	respondError(w, appErr.Message, status)
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondPage writes the items of a page as the body and its metadata as
// the Pagination header
func respondPage[T any](w http.ResponseWriter, list *pagination.PagedList[T]) {
	header, err := json.Marshal(list.Page)
	if err == nil {
		w.Header().Set(PaginationHeader, string(header))
	}
	respondJSON(w, http.StatusOK, list.Items)
}

// parsePageParams reads pageNumber and pageSize, keeping the defaults for
// absent values and capping the size
func parsePageParams(r *http.Request, p pagination.Params) (pagination.Params, error) {
	var err error
	if p.PageNumber, err = queryInt(r, "pageNumber", p.PageNumber); err != nil {
		return p, err
	}
	if p.PageSize, err = queryInt(r, "pageSize", p.PageSize); err != nil {
		return p, err
	}
	return p.Capped(), nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, apperr.Validation(name + " must be an integer")
	}
	return v, nil
}

func defaultPage() pagination.Params {
	return pagination.Params{PageNumber: 1, PageSize: pagination.DefaultPageSize}
}
