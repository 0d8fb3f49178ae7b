package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/service"
)

// UserHandler serves account lookup, update and deletion.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Both fields are optional; a nil pointer means "leave unchanged".
type updateUserRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,min=2,max=20"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type deleteUserRequest struct {
	Password string `json:"password" validate:"required"`
}

// HTTP: GET /api/v1/users/{userID}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HTTP: PUT /api/v1/users/{userID}
// REQUEST BODY: {"nickname": "new-name", "password": "new-password"}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	user, err := h.users.UpdateUser(r.Context(), email, id, service.UpdateUserInput{
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes the caller's own account and everything it owns.
// The current password must be re-entered.
//
// HTTP: DELETE /api/v1/users/{userID}
// REQUEST BODY: {"password": "..."}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req deleteUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	if err := h.users.DeleteUser(r.Context(), email, id, req.Password); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
