package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/service"
)

// CommentHandler serves the comments of one post. Every route is nested
// under /posts/{postID}, and the service rejects a comment id that belongs
// to a different post with 404.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// HandleList returns top-level comments oldest first, each with its replies.
//
// HTTP: GET /api/v1/posts/{postID}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	comments, err := h.comments.List(r.Context(), postID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HTTP: POST /api/v1/posts/{postID}/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req commentRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	comment, err := h.comments.Create(r.Context(), email, postID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HTTP: POST /api/v1/posts/{postID}/comments/{commentID}/replies
func (h *CommentHandler) HandleReply(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	reply, err := h.comments.Reply(r.Context(), email, postID, commentID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

// HTTP: PUT /api/v1/posts/{postID}/comments/{commentID}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	comment, err := h.comments.Update(r.Context(), email, postID, commentID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HTTP: DELETE /api/v1/posts/{postID}/comments/{commentID}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := h.ids(w, r)
	if !ok {
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	if err := h.comments.Delete(r.Context(), email, postID, commentID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ids parses {postID} and {commentID}, writing the 400 itself on failure.
func (h *CommentHandler) ids(w http.ResponseWriter, r *http.Request) (postID, commentID int64, ok bool) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return 0, 0, false
	}
	commentID, err = pathID(r, "commentID")
	if err != nil {
		writeError(w, h.logger, err)
		return 0, 0, false
	}
	return postID, commentID, true
}
