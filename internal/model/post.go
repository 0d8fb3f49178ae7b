package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SummaryLength is the number of characters kept in a post summary.
const SummaryLength = 100

// Post belongs to exactly one Blog. Deleting it must also delete its
// TagMaps, Comments and Likes.
type Post struct {
	ID        int64     `json:"id"`
	BlogID    int64     `json:"blogId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewPost(blogID int64, title, content string) *Post {
	now := time.Now()
	return &Post{
		BlogID:    blogID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Edit replaces title and content.
func (p *Post) Edit(title, content string) {
	p.Title = strings.TrimSpace(title)
	p.Content = content
	p.UpdatedAt = time.Now()
}

// Summary returns the first SummaryLength characters of the content,
// followed by "..." when it was cut.
func (p *Post) Summary() string {
	return Summarize(p.Content, SummaryLength)
}

// Summarize cuts s to n runes (not bytes, so Hangul and emoji stay intact).
func Summarize(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// Tag is shared between posts and never deleted when a post drops it.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagMap is the join row between one Post and one Tag.
type TagMap struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"postId"`
	TagID  int64 `json:"tagId"`
}

// NormalizeTags trims names, drops empties and removes duplicates while
// keeping the first-seen order.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
