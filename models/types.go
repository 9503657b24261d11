// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// RefreshCookieName is the HTTP-only cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// ExpiredAccessTokenMessage is the 401 message for an access token that is
// well-formed but past its expiry. Clients refresh only on this message.
const ExpiredAccessTokenMessage = "access token expired"

// Domain types

// User is a stored account. PasswordHash and RefreshToken never leave the server.
type User struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	Instagram    string    `json:"instagram"`
	LinkedIn     string    `json:"linkedin"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the resolved identity shown next to articles and comments.
type UserSummary struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Article is a published post with its embedded likes and comments.
type Article struct {
	ID        string      `json:"_id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Image     string      `json:"image"`
	Author    UserSummary `json:"author"`
	Likes     []string    `json:"likes"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Comment is append-only; there is no edit or delete.
type Comment struct {
	ID        string      `json:"_id"`
	User      UserSummary `json:"user"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TokenPair is the result of a successful login or registration.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Request types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest distinguishes an absent field (nil, unchanged) from an
// explicit empty string (cleared).
type UpdateProfileRequest struct {
	Bio       *string `json:"bio"`
	Instagram *string `json:"instagram"`
	LinkedIn  *string `json:"linkedin"`
}

type UpdateArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// Response types

type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

// APIResponse is the envelope around every successful response.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// Error response

type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}
