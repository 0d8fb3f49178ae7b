package model

import (
	"time"

	"github.com/sakif/blog-backend/internal/apperror"
)

// Like is unique per (UserID, PostID).
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewLike(userID, postID int64) *Like {
	return &Like{UserID: userID, PostID: postID, CreatedAt: time.Now()}
}

// Follow is unique per (FollowerID, FollowingID) and never self-referencing.
type Follow struct {
	ID          int64     `json:"id"`
	FollowerID  int64     `json:"followerId"`
	FollowingID int64     `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewFollow fails with SelfFollow when both ids are equal. It does not care
// whether the users exist, so the guard runs before any write.
func NewFollow(followerID, followingID int64) (*Follow, error) {
	if followerID == followingID {
		return nil, apperror.SelfFollow()
	}
	return &Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}, nil
}
