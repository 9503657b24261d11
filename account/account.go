// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/media"
	"github.com/thinkshare/thinkshare/models"
	"github.com/thinkshare/thinkshare/store"
)

// RegisterInput is a registration form. AvatarPath is a local temp file.
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Bio        string
	Instagram  string
	LinkedIn   string
	AvatarPath string
}

// Service manages accounts and sessions.
type Service struct {
	users    store.UserStore
	tokens   *auth.TokenIssuer
	hasher   auth.PasswordHasher
	uploader media.Uploader
}

func NewService(users store.UserStore, tokens *auth.TokenIssuer, hasher auth.PasswordHasher, uploader media.Uploader) *Service {
	return &Service{users: users, tokens: tokens, hasher: hasher, uploader: uploader}
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, models.TokenPair, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)

	if in.FullName == "" || in.Email == "" || in.Password == "" || in.AvatarPath == "" {
		media.Discard(in.AvatarPath)
		return nil, models.TokenPair{}, apperr.New(apperr.InvalidInput, "Full name, email, password, and profile picture are required")
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	if err == nil {
		media.Discard(in.AvatarPath)
		return nil, models.TokenPair{}, apperr.New(apperr.Conflict, "Email already registered")
	}
	if !errors.Is(err, store.ErrNotFound) {
		media.Discard(in.AvatarPath)
		return nil, models.TokenPair{}, err
	}

	avatar, err := s.upload(ctx, in.AvatarPath, "Avatar upload failed")
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	user := &models.User{
		ID:           auth.NewID(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       avatar,
		Bio:          in.Bio,
		Instagram:    in.Instagram,
		LinkedIn:     in.LinkedIn,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, models.TokenPair{}, apperr.New(apperr.Conflict, "Email already registered")
		}
		return nil, models.TokenPair{}, err
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, pair, nil
}

// Login checks credentials and opens a new session, replacing any previous one.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, models.TokenPair, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, models.TokenPair{}, apperr.New(apperr.InvalidInput, "Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.TokenPair{}, errInvalidCredentials
	}
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, models.TokenPair{}, err
	}
	if !ok {
		return nil, models.TokenPair{}, errInvalidCredentials
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, pair, nil
}

var errInvalidCredentials = apperr.New(apperr.Unauthenticated, "Invalid email or password")

// Refresh exchanges the stored refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, presented string) (string, error) {
	if presented == "" {
		return "", apperr.New(apperr.Unauthenticated, "No refresh token found")
	}

	userID, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.New(apperr.SessionMismatch, "Invalid refresh token")
	}
	if err != nil {
		return "", err
	}
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return "", apperr.New(apperr.SessionMismatch, "Invalid refresh token")
	}

	return s.tokens.AccessToken(user.ID)
}

// Logout clears the user's stored refresh token. A user without a live
// session, or one that no longer exists, is not an error.
func (s *Service) Logout(ctx context.Context, userID string) error {
	err := s.users.SetRefreshToken(ctx, userID, nil)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	slog.InfoContext(ctx, "user logged out", "user_id", userID)
	return nil
}

// Me returns the stored user.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.UserNotFound, "Unauthorized - User not found")
	}
	return user, err
}

// UpdateProfile changes bio and social links. Nil fields are left alone;
// an empty string clears the field.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	req.Bio = trimPtr(req.Bio)
	req.Instagram = trimPtr(req.Instagram)
	req.LinkedIn = trimPtr(req.LinkedIn)

	user, err := s.users.UpdateProfile(ctx, userID, req)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.UserNotFound, "Unauthorized - User not found")
	}
	return user, err
}

// UpdateAvatar uploads a new avatar and stores its URL.
func (s *Service) UpdateAvatar(ctx context.Context, userID, avatarPath string) (*models.User, error) {
	if avatarPath == "" {
		return nil, apperr.New(apperr.InvalidInput, "File is required")
	}

	url, err := s.upload(ctx, avatarPath, "Something went wrong while uploading avatar")
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateAvatar(ctx, userID, url)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.UserNotFound, "Unauthorized - User not found")
	}
	return user, err
}

// issue signs a token pair and stores the refresh token on the user.
func (s *Service) issue(ctx context.Context, user *models.User) (models.TokenPair, error) {
	access, err := s.tokens.AccessToken(user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.tokens.RefreshToken(user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return models.TokenPair{}, err
	}
	user.RefreshToken = &refresh
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) upload(ctx context.Context, path, failMsg string) (string, error) {
	url, err := s.uploader.Upload(ctx, path)
	if errors.Is(err, media.ErrNotConfigured) {
		return "", apperr.Wrap(apperr.Unavailable, "Image uploads are not configured", err)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamFailure, failMsg, err)
	}
	return url, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
