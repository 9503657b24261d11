// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/thinkshare/thinkshare/models"
)

// CreateArticle stores a new article owned by article.Author.ID. A zero
// CreatedAt is set to the current time.
func (s *SQLStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}
	article.UpdatedAt = article.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO article (id, title, content, image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, article.ID, article.Title, article.Content, article.Image, article.Author.ID,
		article.CreatedAt, article.UpdatedAt)
	if err != nil {
		return oops.Code("ARTICLE_CREATE_FAILED").
			With("operation", "insert article").
			With("author_id", article.Author.ID).
			Wrap(err)
	}

	if article.Likes == nil {
		article.Likes = []string{}
	}
	if article.Comments == nil {
		article.Comments = []models.Comment{}
	}
	return nil
}

// GetArticle retrieves an article with author, likes and comments resolved.
func (s *SQLStore) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := getArticleRow(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	articles := []models.Article{*article}
	if err := hydrate(ctx, s.db, articles, oneArticle(id)); err != nil {
		return nil, err
	}
	return &articles[0], nil
}

// ListArticles returns articles newest first, optionally filtered by author.
func (s *SQLStore) ListArticles(ctx context.Context, authorID string) ([]models.Article, error) {
	query := `
		SELECT a.id, a.title, a.content, a.image, a.author_id, u.full_name, u.avatar,
		       a.created_at, a.updated_at
		FROM article a
		JOIN app_user u ON u.id = a.author_id`
	var args []any
	if authorID != "" {
		query += ` WHERE a.author_id = $1`
		args = append(args, authorID)
	}
	query += ` ORDER BY a.created_at DESC, a.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("ARTICLE_LIST_FAILED").With("author_id", authorID).Wrap(err)
	}

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Image, &a.Author.ID,
			&a.Author.FullName, &a.Author.Avatar, &a.CreatedAt, &a.UpdatedAt); err != nil {
			rows.Close()
			return nil, oops.Code("ARTICLE_LIST_FAILED").With("operation", "scan article").Wrap(err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, oops.Code("ARTICLE_LIST_FAILED").Wrap(err)
	}
	rows.Close()

	scope := allArticles()
	if authorID != "" {
		scope = articlesBy(authorID)
	}
	if err := hydrate(ctx, s.db, articles, scope); err != nil {
		return nil, err
	}
	return articles, nil
}

// UpdateArticle overwrites title, content and image.
func (s *SQLStore) UpdateArticle(ctx context.Context, article *models.Article) error {
	article.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE article SET title = $1, content = $2, image = $3, updated_at = $4
		WHERE id = $5
	`, article.Title, article.Content, article.Image, article.UpdatedAt, article.ID)
	if err != nil {
		return oops.Code("ARTICLE_UPDATE_FAILED").With("id", article.ID).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return oops.Code("ARTICLE_NOT_FOUND").With("id", article.ID).Wrap(ErrNotFound)
	}
	return nil
}

// DeleteArticle removes the article with its likes and comments.
func (s *SQLStore) DeleteArticle(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.Code("ARTICLE_DELETE_FAILED").With("operation", "begin").Wrap(err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM article_comment WHERE article_id = $1`,
		`DELETE FROM article_like WHERE article_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return oops.Code("ARTICLE_DELETE_FAILED").With("id", id).Wrap(err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM article WHERE id = $1`, id)
	if err != nil {
		return oops.Code("ARTICLE_DELETE_FAILED").With("id", id).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return oops.Code("ARTICLE_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return oops.Code("ARTICLE_DELETE_FAILED").With("operation", "commit").Wrap(err)
	}
	return nil
}

// ToggleLike flips userID's membership in the article's like-set.
func (s *SQLStore) ToggleLike(ctx context.Context, articleID, userID string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, oops.Code("ARTICLE_LIKE_FAILED").With("operation", "begin").Wrap(err)
	}
	defer tx.Rollback()

	if err := articleExists(ctx, tx, articleID); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM article_like WHERE article_id = $1 AND user_id = $2
	`, articleID, userID)
	if err != nil {
		return nil, oops.Code("ARTICLE_LIKE_FAILED").With("article_id", articleID).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO article_like (article_id, user_id, liked_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (article_id, user_id) DO NOTHING
		`, articleID, userID, time.Now().UTC())
		if err != nil {
			return nil, oops.Code("ARTICLE_LIKE_FAILED").With("article_id", articleID).Wrap(err)
		}
	}

	likes, err := loadLikes(ctx, tx, oneArticle(articleID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, oops.Code("ARTICLE_LIKE_FAILED").With("operation", "commit").Wrap(err)
	}

	result := likes[articleID]
	if result == nil {
		result = []string{}
	}
	return result, nil
}

// maxCommentAttempts bounds retries when two writers pick the same position.
const maxCommentAttempts = 5

// AddComment appends a comment after the current last position. Positions
// are unique per article; a writer that loses the race retries with the
// next position.
func (s *SQLStore) AddComment(ctx context.Context, articleID string, comment models.Comment) ([]models.Comment, error) {
	var err error
	for attempt := 1; attempt <= maxCommentAttempts; attempt++ {
		var comments []models.Comment
		comments, err = s.addComment(ctx, articleID, comment)
		if err == nil {
			return comments, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, oops.Code("ARTICLE_COMMENT_FAILED").
		With("article_id", articleID).
		With("attempts", maxCommentAttempts).
		Wrap(err)
}

func (s *SQLStore) addComment(ctx context.Context, articleID string, comment models.Comment) ([]models.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, oops.Code("ARTICLE_COMMENT_FAILED").With("operation", "begin").Wrap(err)
	}
	defer tx.Rollback()

	if err := articleExists(ctx, tx, articleID); err != nil {
		return nil, err
	}

	var last int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) FROM article_comment WHERE article_id = $1
	`, articleID).Scan(&last)
	if err != nil {
		return nil, oops.Code("ARTICLE_COMMENT_FAILED").With("article_id", articleID).Wrap(err)
	}

	if s.beforeCommentInsert != nil {
		if err := s.beforeCommentInsert(ctx, tx, articleID, last+1); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO article_comment (id, article_id, user_id, text, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.ID, articleID, comment.User.ID, comment.Text, last+1, comment.CreatedAt.UTC())
	if err != nil {
		return nil, oops.Code("ARTICLE_COMMENT_FAILED").With("article_id", articleID).With("position", last+1).Wrap(err)
	}

	comments, err := loadComments(ctx, tx, oneArticle(articleID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, oops.Code("ARTICLE_COMMENT_FAILED").With("operation", "commit").Wrap(err)
	}

	result := comments[articleID]
	if result == nil {
		result = []models.Comment{}
	}
	return result, nil
}

func getArticleRow(ctx context.Context, q querier, id string) (*models.Article, error) {
	var a models.Article
	err := q.QueryRowContext(ctx, `
		SELECT a.id, a.title, a.content, a.image, a.author_id, u.full_name, u.avatar,
		       a.created_at, a.updated_at
		FROM article a
		JOIN app_user u ON u.id = a.author_id
		WHERE a.id = $1
	`, id).Scan(&a.ID, &a.Title, &a.Content, &a.Image, &a.Author.ID,
		&a.Author.FullName, &a.Author.Avatar, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("ARTICLE_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ARTICLE_GET_FAILED").With("id", id).Wrap(err)
	}
	return &a, nil
}

func articleExists(ctx context.Context, q querier, id string) error {
	var found string
	err := q.QueryRowContext(ctx, `SELECT id FROM article WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return oops.Code("ARTICLE_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return oops.Code("ARTICLE_GET_FAILED").With("id", id).Wrap(err)
	}
	return nil
}

// articleScope is a subquery selecting the ids of the articles to hydrate,
// so the number of bound parameters does not grow with the result set.
type articleScope struct {
	ids  string
	args []any
}

func allArticles() articleScope {
	return articleScope{ids: `SELECT id FROM article`}
}

func articlesBy(authorID string) articleScope {
	return articleScope{ids: `SELECT id FROM article WHERE author_id = $1`, args: []any{authorID}}
}

func oneArticle(id string) articleScope {
	return articleScope{ids: `SELECT id FROM article WHERE id = $1`, args: []any{id}}
}

// hydrate fills Likes and Comments for each article in place.
func hydrate(ctx context.Context, q querier, articles []models.Article, scope articleScope) error {
	if len(articles) == 0 {
		return nil
	}

	likes, err := loadLikes(ctx, q, scope)
	if err != nil {
		return err
	}
	comments, err := loadComments(ctx, q, scope)
	if err != nil {
		return err
	}

	for i := range articles {
		articles[i].Likes = likes[articles[i].ID]
		if articles[i].Likes == nil {
			articles[i].Likes = []string{}
		}
		articles[i].Comments = comments[articles[i].ID]
		if articles[i].Comments == nil {
			articles[i].Comments = []models.Comment{}
		}
	}
	return nil
}

func loadLikes(ctx context.Context, q querier, scope articleScope) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT article_id, user_id FROM article_like
		WHERE article_id IN (`+scope.ids+`)
		ORDER BY article_id, user_id
	`, scope.args...)
	if err != nil {
		return nil, oops.Code("ARTICLE_LIKES_FAILED").Wrap(err)
	}
	defer rows.Close()

	likes := make(map[string][]string)
	for rows.Next() {
		var articleID, userID string
		if err := rows.Scan(&articleID, &userID); err != nil {
			return nil, oops.Code("ARTICLE_LIKES_FAILED").With("operation", "scan").Wrap(err)
		}
		likes[articleID] = append(likes[articleID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ARTICLE_LIKES_FAILED").Wrap(err)
	}
	return likes, nil
}

func loadComments(ctx context.Context, q querier, scope articleScope) (map[string][]models.Comment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.article_id, c.id, c.user_id, u.full_name, u.avatar, c.text, c.created_at
		FROM article_comment c
		JOIN app_user u ON u.id = c.user_id
		WHERE c.article_id IN (`+scope.ids+`)
		ORDER BY c.article_id, c.position
	`, scope.args...)
	if err != nil {
		return nil, oops.Code("ARTICLE_COMMENTS_FAILED").Wrap(err)
	}
	defer rows.Close()

	comments := make(map[string][]models.Comment)
	for rows.Next() {
		var articleID string
		var c models.Comment
		if err := rows.Scan(&articleID, &c.ID, &c.User.ID, &c.User.FullName, &c.User.Avatar,
			&c.Text, &c.CreatedAt); err != nil {
			return nil, oops.Code("ARTICLE_COMMENTS_FAILED").With("operation", "scan").Wrap(err)
		}
		comments[articleID] = append(comments[articleID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ARTICLE_COMMENTS_FAILED").Wrap(err)
	}
	return comments, nil
}
