package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/service"
)

// PostHandler manages CRUD operations and listing for blog posts.
//
// The handler only translates HTTP into service calls: parse the path and
// body, pull the caller's email out of the context, call the service,
// write the result. Ownership checks live in the service.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

type postRequest struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
}

func (req postRequest) input() service.PostInput {
	return service.PostInput{Title: req.Title, Content: req.Content, Tags: req.Tags}
}

// HandleList returns one page of post summaries, newest first.
//
// HTTP: GET /api/v1/posts?tag=go&blogId=3&page=0&size=10
//
// Every query parameter is optional. Out-of-range paging is clamped by the
// service rather than rejected; only non-numeric values are a 400.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	size, err := queryInt(r, "size", service.DefaultPageSize)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	blogID, err := queryInt(r, "blogId", 0)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.posts.List(r.Context(), service.PostQuery{
		Tag:    r.URL.Query().Get("tag"),
		BlogID: int64(blogID),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HTTP: POST /api/v1/posts
// REQUEST BODY: {"title": "...", "content": "markdown...", "tags": ["go"]}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	post, err := h.posts.Create(r.Context(), email, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HTTP: GET /api/v1/posts/{postID}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HTTP: PUT /api/v1/posts/{postID}
// The tag list in the body replaces the post's tags.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req postRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	post, err := h.posts.Update(r.Context(), email, id, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HTTP: DELETE /api/v1/posts/{postID}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postID")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	email, _ := auth.EmailFromContext(r.Context())
	if err := h.posts.Delete(r.Context(), email, id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	// 204 No Content: success, nothing to return
	w.WriteHeader(http.StatusNoContent)
}
