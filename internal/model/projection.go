package model

import "time"

// Projections are the read-only shapes returned to HTTP callers.

// Author is the public face of a user inside posts and comments.
type Author struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

func AuthorOf(u *User) Author {
	return Author{UserID: u.ID, Nickname: u.Nickname}
}

type UserResponse struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	BlogID    int64     `json:"blogId"`
	CreatedAt time.Time `json:"createdAt"`
}

func UserResponseOf(u *User, b *Blog) UserResponse {
	r := UserResponse{
		UserID:    u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt,
	}
	if b != nil {
		r.BlogID = b.ID
	}
	return r
}

type ReplyResponse struct {
	ReplyID   int64     `json:"replyId"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentWithReplies struct {
	CommentID int64           `json:"commentId"`
	Content   string          `json:"content"`
	Author    Author          `json:"author"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Replies   []ReplyResponse `json:"replies"`
}

// CommentResponse is returned after a single comment or reply is written.
type CommentResponse struct {
	CommentID int64     `json:"commentId"`
	PostID    int64     `json:"postId"`
	ParentID  *int64    `json:"parentId,omitempty"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func CommentResponseOf(c *Comment, author Author) CommentResponse {
	return CommentResponse{
		CommentID: c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		Author:    author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// PostResponse is the detail view of a post.
type PostResponse struct {
	PostID      int64                `json:"postId"`
	BlogID      int64                `json:"blogId"`
	Title       string               `json:"title"`
	Content     string               `json:"content"`
	ContentHTML string               `json:"contentHtml,omitempty"`
	Author      Author               `json:"author"`
	Tags        []string             `json:"tags"`
	LikeCount   int                  `json:"likeCount"`
	Comments    []CommentWithReplies `json:"comments"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// PostSummary is one row of a post listing.
type PostSummary struct {
	PostID  int64    `json:"postId"`
	BlogID  int64    `json:"blogId"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Author  Author   `json:"author"`
	Tags    []string `json:"tags"`
	// CommentCount includes replies.
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Page is one page of a listing. Page numbers start at 0.
type Page[T any] struct {
	Content       []T `json:"content"`
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

func NewPage[T any](content []T, page, size, total int) Page[T] {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

type LikeInfo struct {
	LikeCount int  `json:"likeCount"`
	Liked     bool `json:"checkLike"`
}

type FollowInfo struct {
	UserID         int64 `json:"userId"`
	FollowerCount  int   `json:"followerCount"`
	FollowingCount int   `json:"followingCount"`
	Following      bool  `json:"following"`
}
