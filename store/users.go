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

const userColumns = `id, full_name, email, password_hash, avatar, bio, instagram, linkedin,
	refresh_token, created_at, updated_at`

// CreateUser stores a new user. Returns ErrDuplicateEmail if the email is taken.
func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, full_name, email, password_hash, avatar, bio, instagram, linkedin,
		                      refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.FullName, user.Email, user.PasswordHash, user.Avatar, user.Bio,
		user.Instagram, user.LinkedIn, user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return oops.Code("USER_DUPLICATE_EMAIL").With("email", user.Email).Wrap(ErrDuplicateEmail)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("id", id).Wrap(err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by exact email.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM app_user WHERE email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("email", email).Wrap(err)
	}
	return user, nil
}

// SetRefreshToken overwrites the user's refresh token.
func (s *SQLStore) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_user SET refresh_token = $1 WHERE id = $2
	`, token, userID)
	if err != nil {
		return oops.Code("USER_SET_REFRESH_FAILED").With("id", userID).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", userID).Wrap(ErrNotFound)
	}
	return nil
}

// UpdateProfile sets each non-nil field; nil fields keep their stored value.
func (s *SQLStore) UpdateProfile(ctx context.Context, userID string, upd models.UpdateProfileRequest) (*models.User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_user
		SET bio = COALESCE($1, bio),
		    instagram = COALESCE($2, instagram),
		    linkedin = COALESCE($3, linkedin),
		    updated_at = $4
		WHERE id = $5
	`, upd.Bio, upd.Instagram, upd.LinkedIn, time.Now().UTC(), userID)
	if err != nil {
		return nil, oops.Code("USER_UPDATE_PROFILE_FAILED").With("id", userID).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, oops.Code("USER_NOT_FOUND").With("id", userID).Wrap(ErrNotFound)
	}
	return s.GetUserByID(ctx, userID)
}

// UpdateAvatar replaces the avatar URL.
func (s *SQLStore) UpdateAvatar(ctx context.Context, userID, avatar string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_user SET avatar = $1, updated_at = $2 WHERE id = $3
	`, avatar, time.Now().UTC(), userID)
	if err != nil {
		return nil, oops.Code("USER_UPDATE_AVATAR_FAILED").With("id", userID).Wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, oops.Code("USER_NOT_FOUND").With("id", userID).Wrap(ErrNotFound)
	}
	return s.GetUserByID(ctx, userID)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var refresh sql.NullString
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Avatar, &u.Bio,
		&u.Instagram, &u.LinkedIn, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if refresh.Valid {
		u.RefreshToken = &refresh.String
	}
	return &u, nil
}
