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

// FollowService manages follow relations between users.
//
// RESOLUTION ORDER (follow and unfollow):
//
//	caller by email → target by id → self-follow → duplicate / relation
//
// Each step fails with its own error so a client can tell "you do not
// exist", "they do not exist" and "you are not following them" apart.
type FollowService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewFollowService(store repository.Store, logger *slog.Logger) *FollowService {
	return &FollowService{store: store, logger: logger}
}

func (s *FollowService) Follow(ctx context.Context, targetID int64, email string) (model.FollowInfo, error) {
	var info model.FollowInfo
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		follower, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		target, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		f, err := model.NewFollow(follower.ID, target.ID)
		if err != nil {
			return err
		}
		exists, err := tx.Follows().Exists(ctx, f.FollowerID, f.FollowingID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.DuplicateFollow()
		}
		if err := tx.Follows().Create(ctx, f); err != nil {
			return err
		}

		info, err = followInfo(ctx, tx, target.ID, true)
		return err
	})
	if err != nil {
		return model.FollowInfo{}, fmt.Errorf("service: following user %d: %w", targetID, err)
	}

	s.logger.Info("follow created", slog.Int64("following_id", targetID))
	return info, nil
}

func (s *FollowService) Unfollow(ctx context.Context, targetID int64, email string) (model.FollowInfo, error) {
	var info model.FollowInfo
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		follower, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		target, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		f, err := tx.Follows().Get(ctx, follower.ID, target.ID)
		if err != nil {
			return err
		}
		if err := tx.Follows().Delete(ctx, f.ID); err != nil {
			return err
		}

		info, err = followInfo(ctx, tx, target.ID, false)
		return err
	})
	if err != nil {
		return model.FollowInfo{}, fmt.Errorf("service: unfollowing user %d: %w", targetID, err)
	}

	s.logger.Info("follow removed", slog.Int64("following_id", targetID))
	return info, nil
}

// GetFollowInfo returns the target's counts and, when the caller resolves,
// whether the caller follows the target.
func (s *FollowService) GetFollowInfo(ctx context.Context, targetID int64, email string) (model.FollowInfo, error) {
	var info model.FollowInfo
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		target, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		following := false
		if email != "" {
			me, err := tx.Users().GetByEmail(ctx, email)
			switch {
			case err == nil:
				following, err = tx.Follows().Exists(ctx, me.ID, target.ID)
				if err != nil {
					return err
				}
			case !errors.Is(err, apperror.ErrNotFound):
				return err
			}
		}

		info, err = followInfo(ctx, tx, target.ID, following)
		return err
	})
	return info, err
}

func (s *FollowService) ListFollowers(ctx context.Context, userID int64) ([]model.Author, error) {
	return s.list(ctx, userID, repository.FollowRepository.ListFollowers)
}

func (s *FollowService) ListFollowings(ctx context.Context, userID int64) ([]model.Author, error) {
	return s.list(ctx, userID, repository.FollowRepository.ListFollowings)
}

func (s *FollowService) list(
	ctx context.Context,
	userID int64,
	fetch func(repository.FollowRepository, context.Context, int64) ([]model.User, error),
) ([]model.Author, error) {
	var out []model.Author
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		users, err := fetch(tx.Follows(), ctx, userID)
		if err != nil {
			return err
		}
		out = make([]model.Author, 0, len(users))
		for i := range users {
			out = append(out, model.AuthorOf(&users[i]))
		}
		return nil
	})
	return out, err
}

func followInfo(ctx context.Context, tx repository.Tx, userID int64, following bool) (model.FollowInfo, error) {
	followers, err := tx.Follows().CountFollowers(ctx, userID)
	if err != nil {
		return model.FollowInfo{}, err
	}
	followings, err := tx.Follows().CountFollowings(ctx, userID)
	if err != nil {
		return model.FollowInfo{}, err
	}
	return model.FollowInfo{
		UserID:         userID,
		FollowerCount:  followers,
		FollowingCount: followings,
		Following:      following,
	}, nil
}
