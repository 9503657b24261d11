// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/thinkshare/thinkshare/models"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore persists user records and their single live refresh token.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// SetRefreshToken overwrites the stored refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, userID string, token *string) error

	UpdateProfile(ctx context.Context, userID string, upd models.UpdateProfileRequest) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatar string) (*models.User, error)
}

// ArticleStore persists articles together with their likes and comments.
// Each mutating call touches a single article inside one transaction.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)

	// ListArticles returns all articles, newest first. A non-empty authorID
	// restricts the result to that author.
	ListArticles(ctx context.Context, authorID string) ([]models.Article, error)

	// UpdateArticle writes title, content and image as given.
	UpdateArticle(ctx context.Context, article *models.Article) error
	DeleteArticle(ctx context.Context, id string) error

	// ToggleLike adds userID to the like-set, or removes it if present, and
	// returns the resulting set.
	ToggleLike(ctx context.Context, articleID, userID string) ([]string, error)

	// AddComment appends a comment and returns the full ordered comment list.
	AddComment(ctx context.Context, articleID string, comment models.Comment) ([]models.Comment, error)
}

// SQLStore implements UserStore and ArticleStore over database/sql. Queries
// are written for both PostgreSQL and SQLite.
type SQLStore struct {
	db *sql.DB

	// beforeCommentInsert runs inside the comment transaction once the
	// position is chosen. Tests use it to force a position conflict.
	beforeCommentInsert func(ctx context.Context, q querier, articleID string, position int64) error
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

var (
	_ UserStore    = (*SQLStore)(nil)
	_ ArticleStore = (*SQLStore)(nil)
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}

	return false
}
