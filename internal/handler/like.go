package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/service"
)

// LikeHandler serves /posts/{postID}/likes. Every response is the post's
// LikeInfo after the call, so the client can redraw the button from it.
type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, logger: logger}
}

// HandleGet works for anonymous callers too (behind OptionalAuth); they
// always see checkLike=false.
//
// HTTP: GET /api/v1/posts/{postID}/likes
func (h *LikeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.likes.GetLikeInfo)
}

// HTTP: POST /api/v1/posts/{postID}/likes
func (h *LikeHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.likes.AddLike)
}

// HTTP: DELETE /api/v1/posts/{postID}/likes
func (h *LikeHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.likes.RemoveLike)
}

func (h *LikeHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, email string, postID int64) (model.LikeInfo, error),
) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	info, err := call(r.Context(), email, postID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
