// Package repository declares the persistence contracts used by the service
// layer. Implementations live in subpackages (see repository/sqlite).
//
// Every service operation runs inside Store.Atomic: the callback receives a
// Tx whose repositories all share one database transaction, so the whole
// operation commits or rolls back as a unit. Cascades (post -> comments,
// likes, tag maps) are issued explicitly by the services through these
// interfaces; the storage layer never deletes dependents on its own.
package repository

import (
	"context"

	"github.com/sakif/blog-backend/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	TagName string
	BlogID  int64
	ListOptions
}

// Store is the transaction boundary.
type Store interface {
	// Atomic runs fn in a single transaction. Any error returned by fn rolls
	// the transaction back and is returned unchanged.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Users() UserRepository
	Blogs() BlogRepository
	Posts() PostRepository
	Tags() TagRepository
	TagMaps() TagMapRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Follows() FollowRepository
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	GetByID(ctx context.Context, id int64) (*model.Blog, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Blog, error)
	Delete(ctx context.Context, id int64) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context, filter PostFilter) ([]model.Post, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
	ListIDsByBlog(ctx context.Context, blogID int64) ([]int64, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	ListNamesByPost(ctx context.Context, postID int64) ([]string, error)
}

type TagMapRepository interface {
	Create(ctx context.Context, tm *model.TagMap) error
	ListByPost(ctx context.Context, postID int64) ([]model.TagMap, error)
	DeleteByPost(ctx context.Context, postID int64) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	CountByPost(ctx context.Context, postID int64) (int, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
	DeleteReplies(ctx context.Context, parentID int64) (int64, error)
	DeleteByPost(ctx context.Context, postID int64) (int64, error)
	// DeleteByUser removes the user's comments and every reply to them.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) error
	Get(ctx context.Context, userID, postID int64) (*model.Like, error)
	Exists(ctx context.Context, userID, postID int64) (bool, error)
	CountByPost(ctx context.Context, postID int64) (int, error)
	Delete(ctx context.Context, id int64) error
	DeleteByPost(ctx context.Context, postID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}

type FollowRepository interface {
	Create(ctx context.Context, follow *model.Follow) error
	Get(ctx context.Context, followerID, followingID int64) (*model.Follow, error)
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowings(ctx context.Context, userID int64) (int, error)
	ListFollowers(ctx context.Context, userID int64) ([]model.User, error)
	ListFollowings(ctx context.Context, userID int64) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
	// DeleteByUser removes follows in both directions.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
