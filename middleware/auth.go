// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/models"
	"github.com/thinkshare/thinkshare/store"
)

// UserLookup resolves the user named by an access token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer access token and
// attaches the resolved user to the request context. Cookies are ignored.
func RequireAuth(issuer *auth.TokenIssuer, users UserLookup) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, r, err)
				return
			}

			userID, err := issuer.VerifyAccess(token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if errors.Is(err, store.ErrNotFound) {
				WriteError(w, r, apperr.New(apperr.UserNotFound, "Unauthorized - User not found"))
				return
			}
			if err != nil {
				WriteError(w, r, err)
				return
			}

			next(w, r.WithContext(auth.WithUser(r.Context(), user)))
		}
	}
}
