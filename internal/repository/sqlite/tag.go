package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository"
)

var (
	_ repository.TagRepository    = (*TagRepo)(nil)
	_ repository.TagMapRepository = (*TagMapRepo)(nil)
)

type TagRepo struct {
	q querier
}

func (r *TagRepo) Create(ctx context.Context, tag *model.Tag) error {
	res, err := r.q.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, tag.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("tag").Wrap(err)
		}
		return fmt.Errorf("sqlite: inserting tag %q: %w", tag.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading tag id: %w", err)
	}
	tag.ID = id
	return nil
}

// GetByName returns apperror.TagNotFound if the tag does not exist yet.
func (r *TagRepo) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := r.q.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.TagNotFound(name)
		}
		return nil, fmt.Errorf("sqlite: getting tag %q: %w", name, err)
	}
	return &t, nil
}

// ListNamesByPost returns the post's tag names in the order they were attached.
func (r *TagRepo) ListNamesByPost(ctx context.Context, postID int64) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT t.name FROM tag_maps tm JOIN tags t ON t.id = tm.tag_id
		 WHERE tm.post_id = ? ORDER BY tm.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags for post %d: %w", postID, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type TagMapRepo struct {
	q querier
}

func (r *TagMapRepo) Create(ctx context.Context, tm *model.TagMap) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO tag_maps (post_id, tag_id) VALUES (?, ?)`, tm.PostID, tm.TagID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("tag mapping").Wrap(err)
		}
		return fmt.Errorf("sqlite: inserting tag map (post=%d, tag=%d): %w", tm.PostID, tm.TagID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading tag map id: %w", err)
	}
	tm.ID = id
	return nil
}

func (r *TagMapRepo) ListByPost(ctx context.Context, postID int64) ([]model.TagMap, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, post_id, tag_id FROM tag_maps WHERE post_id = ? ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tag maps for post %d: %w", postID, err)
	}
	defer rows.Close()

	var maps []model.TagMap
	for rows.Next() {
		var tm model.TagMap
		if err := rows.Scan(&tm.ID, &tm.PostID, &tm.TagID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag map: %w", err)
		}
		maps = append(maps, tm)
	}
	return maps, rows.Err()
}

// DeleteByPost detaches every tag from the post. The tags themselves stay.
func (r *TagMapRepo) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tag_maps WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting tag maps for post %d: %w", postID, err)
	}
	return rowsAffected(res)
}
