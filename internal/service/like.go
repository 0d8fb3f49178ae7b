package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository"
)

type LikeService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewLikeService(store repository.Store, logger *slog.Logger) *LikeService {
	return &LikeService{store: store, logger: logger}
}

// AddLike resolves user, then post, then rejects a duplicate. The UNIQUE
// (user_id, post_id) constraint catches the race the Exists check misses.
func (s *LikeService) AddLike(ctx context.Context, email string, postID int64) (model.LikeInfo, error) {
	var info model.LikeInfo
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		if _, err := tx.Posts().GetByID(ctx, postID); err != nil {
			return err
		}

		liked, err := tx.Likes().Exists(ctx, user.ID, postID)
		if err != nil {
			return err
		}
		if liked {
			return apperror.DuplicateLike()
		}
		if err := tx.Likes().Create(ctx, model.NewLike(user.ID, postID)); err != nil {
			return err
		}

		info, err = likeInfo(ctx, tx, postID, true)
		return err
	})
	if err != nil {
		return model.LikeInfo{}, fmt.Errorf("service: liking post %d: %w", postID, err)
	}

	s.logger.Info("post liked", slog.Int64("post_id", postID))
	return info, nil
}

// RemoveLike fails NotFound at whichever of user, post or like is missing.
func (s *LikeService) RemoveLike(ctx context.Context, email string, postID int64) (model.LikeInfo, error) {
	var info model.LikeInfo
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		if _, err := tx.Posts().GetByID(ctx, postID); err != nil {
			return err
		}

		like, err := tx.Likes().Get(ctx, user.ID, postID)
		if err != nil {
			return err
		}
		if err := tx.Likes().Delete(ctx, like.ID); err != nil {
			return err
		}

		info, err = likeInfo(ctx, tx, postID, false)
		return err
	})
	if err != nil {
		return model.LikeInfo{}, fmt.Errorf("service: unliking post %d: %w", postID, err)
	}

	s.logger.Info("post unliked", slog.Int64("post_id", postID))
	return info, nil
}

// GetLikeInfo works for anonymous callers (email == ""). An email that
// does not resolve is treated the same way: liked is false.
func (s *LikeService) GetLikeInfo(ctx context.Context, email string, postID int64) (model.LikeInfo, error) {
	var info model.LikeInfo
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.Posts().GetByID(ctx, postID); err != nil {
			return err
		}

		liked := false
		if email != "" {
			user, err := tx.Users().GetByEmail(ctx, email)
			switch {
			case err == nil:
				liked, err = tx.Likes().Exists(ctx, user.ID, postID)
				if err != nil {
					return err
				}
			case !errors.Is(err, apperror.ErrNotFound):
				return err
			}
		}

		var err error
		info, err = likeInfo(ctx, tx, postID, liked)
		return err
	})
	return info, err
}

func likeInfo(ctx context.Context, tx repository.Tx, postID int64, liked bool) (model.LikeInfo, error) {
	n, err := tx.Likes().CountByPost(ctx, postID)
	if err != nil {
		return model.LikeInfo{}, err
	}
	return model.LikeInfo{LikeCount: n, Liked: liked}, nil
}
