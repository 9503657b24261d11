// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/models"
	"github.com/thinkshare/thinkshare/store"
	"github.com/thinkshare/thinkshare/testutil"
)

func newUser(email string) *models.User {
	return &models.User{
		ID:           auth.NewID(),
		FullName:     "User " + email,
		Email:        email,
		PasswordHash: "hash",
		Avatar:       "https://img.example.com/a.png",
	}
}

func ptr(s string) *string { return &s }

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	s := store.New(testutil.SetupTestDB(t))

	u := newUser("ada@example.com")
	u.Bio = "analyst"
	require.NoError(t, s.CreateUser(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)
	assert.Equal(t, "analyst", byID.Bio)
	assert.Nil(t, byID.RefreshToken)

	byEmail, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := store.New(testutil.SetupTestDB(t))

	require.NoError(t, s.CreateUser(ctx, newUser("ada@example.com")))
	err := s.CreateUser(ctx, newUser("ada@example.com"))
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestSetRefreshToken(t *testing.T) {
	ctx := context.Background()
	s := store.New(testutil.SetupTestDB(t))
	u := newUser("ada@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	require.NoError(t, s.SetRefreshToken(ctx, u.ID, ptr("first")))
	require.NoError(t, s.SetRefreshToken(ctx, u.ID, ptr("second")))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "second", *got.RefreshToken, "a new token overwrites the old one")

	require.NoError(t, s.SetRefreshToken(ctx, u.ID, nil))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)

	assert.ErrorIs(t, s.SetRefreshToken(ctx, "missing", nil), store.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := store.New(testutil.SetupTestDB(t))
	u := newUser("ada@example.com")
	u.Bio = "old bio"
	u.Instagram = "@ada"
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.UpdateProfile(ctx, u.ID, models.UpdateProfileRequest{
		Bio:      ptr("new bio"),
		LinkedIn: ptr("in/ada"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new bio", got.Bio)
	assert.Equal(t, "@ada", got.Instagram, "absent field keeps its value")
	assert.Equal(t, "in/ada", got.LinkedIn)

	got, err = s.UpdateProfile(ctx, u.ID, models.UpdateProfileRequest{Instagram: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "", got.Instagram, "empty string clears the field")
	assert.Equal(t, "new bio", got.Bio)

	_, err = s.UpdateProfile(ctx, "missing", models.UpdateProfileRequest{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	s := store.New(testutil.SetupTestDB(t))
	u := newUser("ada@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.UpdateAvatar(ctx, u.ID, "https://img.example.com/b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/b.png", got.Avatar)

	_, err = s.UpdateAvatar(ctx, "missing", "x")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArticleLifecycle(t *testing.T) {
	ctx := context.Background()
	s := store.New(testutil.SetupTestDB(t))
	author := newUser("ada@example.com")
	require.NoError(t, s.CreateUser(ctx, author))

	a := &models.Article{
		ID:      auth.NewID(),
		Title:   "Hello",
		Content: "<p>World</p>",
		Image:   "https://img.example.com/cover.png",
		Author:  models.UserSummary{ID: author.ID},
	}
	require.NoError(t, s.CreateArticle(ctx, a))

	got, err := s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, author.FullName, got.Author.FullName)
	assert.Equal(t, author.Avatar, got.Author.Avatar)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)

	got.Title = "Hello again"
	require.NoError(t, s.UpdateArticle(ctx, got))
	got, err = s.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", got.Title)

	_, err = s.ToggleLike(ctx, a.ID, author.ID)
	require.NoError(t, err)
	_, err = s.AddComment(ctx, a.ID, models.Comment{ID: auth.NewID(), User: models.UserSummary{ID: author.ID}, Text: "first", CreatedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, s.DeleteArticle(ctx, a.ID))
	_, err = s.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteArticle(ctx, a.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateArticle(ctx, &models.Article{ID: a.ID}), store.ErrNotFound)
}

func TestListArticles(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)

	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")
	bob := testutil.CreateTestUser(t, conn, "Bob", "bob@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	for i, tc := range []struct {
		author *models.User
		title  string
	}{{alice, "oldest"}, {bob, "middle"}, {alice, "newest"}} {
		require.NoError(t, s.CreateArticle(ctx, &models.Article{
			ID:        auth.NewID(),
			Title:     tc.title,
			Content:   "c",
			Image:     "i",
			Author:    models.UserSummary{ID: tc.author.ID},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.ListArticles(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, []string{all[0].Title, all[1].Title, all[2].Title})

	mine, err := s.ListArticles(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, a := range mine {
		assert.Equal(t, alice.ID, a.Author.ID)
	}

	none, err := s.ListArticles(ctx, "ghost")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestToggleLikeIsInvolution(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")
	bob := testutil.CreateTestUser(t, conn, "Bob", "bob@example.com")
	id := testutil.CreateTestArticle(t, conn, alice.ID, "Likeable")

	likes, err := s.ToggleLike(ctx, id, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, likes)

	likes, err = s.ToggleLike(ctx, id, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, likes)

	likes, err = s.ToggleLike(ctx, id, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, likes)

	likes, err = s.ToggleLike(ctx, id, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, likes)
	assert.Empty(t, likes)

	_, err = s.ToggleLike(ctx, "missing", alice.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddCommentKeepsOrder(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")
	bob := testutil.CreateTestUser(t, conn, "Bob", "bob@example.com")
	id := testutil.CreateTestArticle(t, conn, alice.ID, "Discuss")

	now := time.Now().UTC()
	for i, u := range []*models.User{bob, alice, bob} {
		_, err := s.AddComment(ctx, id, models.Comment{
			ID:        auth.NewID(),
			User:      models.UserSummary{ID: u.ID},
			Text:      []string{"one", "two", "three"}[i],
			CreatedAt: now,
		})
		require.NoError(t, err)
	}

	got, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "one", got.Comments[0].Text)
	assert.Equal(t, "two", got.Comments[1].Text)
	assert.Equal(t, "three", got.Comments[2].Text)
	assert.Equal(t, "Bob", got.Comments[0].User.FullName)
	assert.Equal(t, "Alice", got.Comments[1].User.FullName)

	_, err = s.AddComment(ctx, "missing", models.Comment{ID: auth.NewID(), User: models.UserSummary{ID: bob.ID}, Text: "x", CreatedAt: now})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommentPositionsAreUnique(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")
	id := testutil.CreateTestArticle(t, conn, alice.ID, "Discuss")

	insert := func(commentID string) error {
		_, err := conn.Exec(`
			INSERT INTO article_comment (id, article_id, user_id, text, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, commentID, id, alice.ID, "x", 1, time.Now().UTC())
		return err
	}

	require.NoError(t, insert("c1"))
	err := insert("c2")
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err), "got %v", err)
}

func TestAddCommentRetriesPositionConflict(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")
	id := testutil.CreateTestArticle(t, conn, alice.ID, "Discuss")

	// The first attempt finds its position already taken, as if another
	// writer committed in between.
	var positions []int64
	s.SetBeforeCommentInsert(func(_ context.Context, exec func(string, ...any) (sql.Result, error), articleID string, position int64) error {
		positions = append(positions, position)
		if len(positions) > 1 {
			return nil
		}
		_, err := exec(`
			INSERT INTO article_comment (id, article_id, user_id, text, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, "racer", articleID, alice.ID, "racer", position, time.Now().UTC())
		return err
	})

	comments, err := s.AddComment(ctx, id, models.Comment{
		ID:        auth.NewID(),
		User:      models.UserSummary{ID: alice.ID},
		Text:      "mine",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 1}, positions)
	require.Len(t, comments, 1)
	assert.Equal(t, "mine", comments[0].Text)
}

func TestAddCommentGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")
	id := testutil.CreateTestArticle(t, conn, alice.ID, "Discuss")

	attempts := 0
	s.SetBeforeCommentInsert(func(_ context.Context, exec func(string, ...any) (sql.Result, error), articleID string, position int64) error {
		attempts++
		_, err := exec(`
			INSERT INTO article_comment (id, article_id, user_id, text, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, fmt.Sprintf("racer-%d", attempts), articleID, alice.ID, "racer", position, time.Now().UTC())
		return err
	})

	_, err := s.AddComment(ctx, id, models.Comment{
		ID:        auth.NewID(),
		User:      models.UserSummary{ID: alice.ID},
		Text:      "mine",
		CreatedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.Equal(t, store.MaxCommentAttempts, attempts)

	got, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Comments, "conflicting attempts must roll back")
}

func TestListArticlesBeyondParameterLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("inserts tens of thousands of rows")
	}

	ctx := context.Background()
	conn := testutil.SetupTestDB(t)
	s := store.New(conn)
	alice := testutil.CreateTestUser(t, conn, "Alice", "alice@example.com")

	// SQLite allows at most 32766 bound parameters per statement.
	const n = 33000
	tx, err := conn.Begin()
	require.NoError(t, err)
	stmt, err := tx.Prepare(`
		INSERT INTO article (id, title, content, image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	require.NoError(t, err)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		_, err := stmt.Exec(fmt.Sprintf("a-%05d", i), "t", "c", "i", alice.ID, now, now)
		require.NoError(t, err)
	}
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Commit())

	liked := "a-00042"
	_, err = s.ToggleLike(ctx, liked, alice.ID)
	require.NoError(t, err)

	all, err := s.ListArticles(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, n)

	byAuthor, err := s.ListArticles(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, n)

	for _, a := range all {
		if a.ID == liked {
			assert.Equal(t, []string{alice.ID}, a.Likes)
		} else {
			assert.Empty(t, a.Likes)
		}
	}
}
