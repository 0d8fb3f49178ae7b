// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside the binary as a single file.
// No separate database server to install, configure, or manage. A personal
// blogging backend fits comfortably on one server, and ":memory:" gives every
// test its own fresh database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// TRANSACTIONS:
// Services never touch *sql.DB directly. They call DB.Atomic, which opens one
// sql.Tx and hands the callback a set of repositories bound to it. Returning
// an error from the callback rolls everything back.
//
// ONE CONNECTION:
// The pool is capped at a single connection. SQLite only allows one writer at
// a time anyway, so this serializes operations instead of surfacing
// SQLITE_BUSY, and it keeps ":memory:" databases shared (each new connection
// to ":memory:" would otherwise see an empty database).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/repository"
)

// compile-time check that *DB is a repository.Store
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out transactional repositories.
type DB struct {
	conn *sql.DB
}

// querier is the subset of *sql.DB and *sql.Tx the repositories need.
// Both types satisfy it, so the same repository code runs inside or outside
// a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/blog.db"  → file-based database (persistent)
//   - ":memory:"      → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers from other processes (backups, sqlite3 shell) proceed
	// while we write. It is a no-op for ":memory:".
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. With them on, a cascade that
	// forgets a dependent row fails loudly instead of leaving orphans.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Atomic runs fn inside one transaction.
//
// fn's error is returned unchanged (typed apperrors stay typed) after the
// rollback. A UNIQUE violation detected at commit time is reported as a
// Duplicate, so a losing concurrent writer never looks like a success.
func (db *DB) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(repos{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("record").Wrap(err)
		}
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	committed = true
	return nil
}

// Repos returns repositories that run directly on the pool, outside any
// transaction. Never call it from inside Atomic: with a single connection
// that would block forever.
func (db *DB) Repos() repository.Tx {
	return repos{q: db.conn}
}

// repos implements repository.Tx over any querier.
type repos struct {
	q querier
}

func (r repos) Users() repository.UserRepository       { return &UserRepo{q: r.q} }
func (r repos) Blogs() repository.BlogRepository       { return &BlogRepo{q: r.q} }
func (r repos) Posts() repository.PostRepository       { return &PostRepo{q: r.q} }
func (r repos) Tags() repository.TagRepository         { return &TagRepo{q: r.q} }
func (r repos) TagMaps() repository.TagMapRepository   { return &TagMapRepo{q: r.q} }
func (r repos) Comments() repository.CommentRepository { return &CommentRepo{q: r.q} }
func (r repos) Likes() repository.LikeRepository       { return &LikeRepo{q: r.q} }
func (r repos) Follows() repository.FollowRepository   { return &FollowRepo{q: r.q} }

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// No table uses ON DELETE CASCADE: the service layer deletes dependents in
// order, and the foreign keys make a forgotten step fail the transaction.
func (db *DB) migrate() error {
	statements := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				nickname      TEXT NOT NULL UNIQUE,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"blogs", `
			CREATE TABLE IF NOT EXISTS blogs (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER NOT NULL UNIQUE REFERENCES users(id),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"posts", `
			CREATE TABLE IF NOT EXISTS posts (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				blog_id    INTEGER NOT NULL REFERENCES blogs(id),
				title      TEXT NOT NULL,
				content    TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_posts_blog_id ON posts(blog_id);
			CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);`},
		{"tags", `
			CREATE TABLE IF NOT EXISTS tags (
				id   INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE
			);`},
		{"tag_maps", `
			CREATE TABLE IF NOT EXISTS tag_maps (
				id      INTEGER PRIMARY KEY AUTOINCREMENT,
				post_id INTEGER NOT NULL REFERENCES posts(id),
				tag_id  INTEGER NOT NULL REFERENCES tags(id),
				UNIQUE (post_id, tag_id)
			);
			CREATE INDEX IF NOT EXISTS idx_tag_maps_tag_id ON tag_maps(tag_id);`},
		{"comments", `
			CREATE TABLE IF NOT EXISTS comments (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				post_id    INTEGER NOT NULL REFERENCES posts(id),
				user_id    INTEGER NOT NULL REFERENCES users(id),
				parent_id  INTEGER REFERENCES comments(id),
				content    TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
			CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id);
			CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id);`},
		{"likes", `
			CREATE TABLE IF NOT EXISTS likes (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER NOT NULL REFERENCES users(id),
				post_id    INTEGER NOT NULL REFERENCES posts(id),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (user_id, post_id)
			);
			CREATE INDEX IF NOT EXISTS idx_likes_post_id ON likes(post_id);`},
		{"follows", `
			CREATE TABLE IF NOT EXISTS follows (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				follower_id  INTEGER NOT NULL REFERENCES users(id),
				following_id INTEGER NOT NULL REFERENCES users(id),
				created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (follower_id, following_id),
				CHECK (follower_id <> following_id)
			);
			CREATE INDEX IF NOT EXISTS idx_follows_following_id ON follows(following_id);`},
	}

	for _, s := range statements {
		if _, err := db.conn.Exec(s.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", s.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE / PRIMARY KEY constraint
// failure. modernc reports extended result codes; the message check covers
// drivers built without them.
func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}

// rowsAffected returns the affected row count of an Exec result.
func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

// count runs a SELECT COUNT(*) style query.
func count(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
