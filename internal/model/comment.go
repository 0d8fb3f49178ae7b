package model

import (
	"strings"
	"time"

	"github.com/sakif/blog-backend/internal/apperror"
)

// Comment is attached to a Post. Top-level comments have a nil ParentID;
// replies point at a top-level comment. Only one level of nesting exists.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	ParentID  *int64    `json:"parentId,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Children holds the direct replies when loaded; never persisted.
	Children []Comment `json:"-"`
}

// IsReply reports whether c answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// NewComment builds a top-level comment.
func NewComment(postID, userID int64, content string) *Comment {
	now := time.Now()
	return &Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   strings.TrimSpace(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewReply builds a reply to parent. Replying to a reply is rejected: the
// children of a comment are only ever its direct replies.
func NewReply(parent *Comment, userID int64, content string) (*Comment, error) {
	if parent.IsReply() {
		return nil, apperror.NestedReply()
	}
	c := NewComment(parent.PostID, userID, content)
	parentID := parent.ID
	c.ParentID = &parentID
	return c, nil
}

func (c *Comment) Edit(content string) {
	c.Content = strings.TrimSpace(content)
	c.UpdatedAt = time.Now()
}

// GroupReplies arranges a flat, oldest-first list into top-level comments
// with their replies in Children. Replies whose parent is missing from the
// list are dropped.
func GroupReplies(flat []Comment) []Comment {
	index := make(map[int64]int, len(flat))
	roots := make([]Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID == nil {
			index[c.ID] = len(roots)
			c.Children = nil
			roots = append(roots, c)
		}
	}
	for _, c := range flat {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			roots[i].Children = append(roots[i].Children, c)
		}
	}
	return roots
}
