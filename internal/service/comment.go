package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/render"
	"github.com/sakif/blog-backend/internal/repository"
)

// CommentService manages comments and their single level of replies.
//
// REPLY DEPTH:
// A reply always points at a top-level comment. Replying to a reply is
// rejected with BadRequest (model.NewReply) rather than re-parented, so a
// client never sees its reply land somewhere it did not aim.
type CommentService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCommentService(store repository.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

func cleanContent(content string) (string, error) {
	content = render.PlainText(content)
	if content == "" {
		return "", apperror.RequiredField("content")
	}
	return content, nil
}

// commentInPost loads commentID and checks it belongs to postID. A comment
// of another post is reported as not found, same as a missing one.
func commentInPost(ctx context.Context, tx repository.Tx, postID, commentID int64) (*model.Comment, error) {
	if _, err := tx.Posts().GetByID(ctx, postID); err != nil {
		return nil, err
	}
	c, err := tx.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.PostID != postID {
		return nil, apperror.CommentNotFound(commentID)
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, email string, postID int64, content string) (model.CommentResponse, error) {
	content, err := cleanContent(content)
	if err != nil {
		return model.CommentResponse{}, err
	}

	var resp model.CommentResponse
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		if _, err := tx.Posts().GetByID(ctx, postID); err != nil {
			return err
		}

		c := model.NewComment(postID, user.ID, content)
		if err := tx.Comments().Create(ctx, c); err != nil {
			return err
		}
		resp = model.CommentResponseOf(c, model.AuthorOf(user))
		return nil
	})
	if err != nil {
		return model.CommentResponse{}, fmt.Errorf("service: creating comment on post %d: %w", postID, err)
	}

	s.logger.Info("comment created",
		slog.Int64("comment_id", resp.CommentID),
		slog.Int64("post_id", postID),
	)
	return resp, nil
}

func (s *CommentService) Reply(ctx context.Context, email string, postID, parentID int64, content string) (model.CommentResponse, error) {
	content, err := cleanContent(content)
	if err != nil {
		return model.CommentResponse{}, err
	}

	var resp model.CommentResponse
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		parent, err := commentInPost(ctx, tx, postID, parentID)
		if err != nil {
			return err
		}

		reply, err := model.NewReply(parent, user.ID, content)
		if err != nil {
			return err
		}
		if err := tx.Comments().Create(ctx, reply); err != nil {
			return err
		}
		resp = model.CommentResponseOf(reply, model.AuthorOf(user))
		return nil
	})
	if err != nil {
		return model.CommentResponse{}, fmt.Errorf("service: replying to comment %d: %w", parentID, err)
	}

	s.logger.Info("reply created",
		slog.Int64("comment_id", resp.CommentID),
		slog.Int64("parent_id", parentID),
	)
	return resp, nil
}

func (s *CommentService) Update(ctx context.Context, email string, postID, commentID int64, content string) (model.CommentResponse, error) {
	content, err := cleanContent(content)
	if err != nil {
		return model.CommentResponse{}, err
	}

	var resp model.CommentResponse
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		c, err := commentInPost(ctx, tx, postID, commentID)
		if err != nil {
			return err
		}
		if c.UserID != user.ID {
			return apperror.NotCommentOwner()
		}

		c.Edit(content)
		if err := tx.Comments().Update(ctx, c); err != nil {
			return err
		}
		resp = model.CommentResponseOf(c, model.AuthorOf(user))
		return nil
	})
	if err != nil {
		return model.CommentResponse{}, fmt.Errorf("service: updating comment %d: %w", commentID, err)
	}
	return resp, nil
}

// Delete removes a comment written by the caller. Deleting a top-level
// comment deletes its replies first.
func (s *CommentService) Delete(ctx context.Context, email string, postID, commentID int64) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		c, err := commentInPost(ctx, tx, postID, commentID)
		if err != nil {
			return err
		}
		if c.UserID != user.ID {
			return apperror.NotCommentOwner()
		}

		if !c.IsReply() {
			if _, err := tx.Comments().DeleteReplies(ctx, c.ID); err != nil {
				return err
			}
		}
		return tx.Comments().Delete(ctx, c.ID)
	})
	if err != nil {
		return fmt.Errorf("service: deleting comment %d: %w", commentID, err)
	}

	s.logger.Info("comment deleted", slog.Int64("comment_id", commentID))
	return nil
}

// List returns the post's top-level comments, oldest first, each with its
// replies.
func (s *CommentService) List(ctx context.Context, postID int64) ([]model.CommentWithReplies, error) {
	var out []model.CommentWithReplies
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.Posts().GetByID(ctx, postID); err != nil {
			return err
		}
		var err error
		out, err = commentTree(ctx, tx, newAuthors(tx), postID)
		return err
	})
	return out, err
}

func commentTree(ctx context.Context, tx repository.Tx, au *authors, postID int64) ([]model.CommentWithReplies, error) {
	flat, err := tx.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	roots := model.GroupReplies(flat)
	out := make([]model.CommentWithReplies, 0, len(roots))
	for _, c := range roots {
		author, err := au.user(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		replies := make([]model.ReplyResponse, 0, len(c.Children))
		for _, r := range c.Children {
			ra, err := au.user(ctx, r.UserID)
			if err != nil {
				return nil, err
			}
			replies = append(replies, model.ReplyResponse{
				ReplyID:   r.ID,
				Content:   r.Content,
				Author:    ra,
				CreatedAt: r.CreatedAt,
				UpdatedAt: r.UpdatedAt,
			})
		}
		out = append(out, model.CommentWithReplies{
			CommentID: c.ID,
			Content:   c.Content,
			Author:    author,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Replies:   replies,
		})
	}
	return out, nil
}
