package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/service"
)

// FollowHandler serves /users/{userID}/follows and the follower lists.
type FollowHandler struct {
	follows *service.FollowService
	logger  *slog.Logger
}

func NewFollowHandler(follows *service.FollowService, logger *slog.Logger) *FollowHandler {
	return &FollowHandler{follows: follows, logger: logger}
}

// HTTP: GET /api/v1/users/{userID}/follows (optional auth)
func (h *FollowHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.follows.GetFollowInfo)
}

// HTTP: POST /api/v1/users/{userID}/follows
func (h *FollowHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.follows.Follow)
}

// HTTP: DELETE /api/v1/users/{userID}/follows
func (h *FollowHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.follows.Unfollow)
}

// HTTP: GET /api/v1/users/{userID}/followers
func (h *FollowHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.follows.ListFollowers)
}

// HTTP: GET /api/v1/users/{userID}/followings
func (h *FollowHandler) HandleFollowings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.follows.ListFollowings)
}

func (h *FollowHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, targetID int64, email string) (model.FollowInfo, error),
) {
	targetID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	info, err := call(r.Context(), targetID, email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *FollowHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, userID int64) ([]model.Author, error),
) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	users, err := call(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
