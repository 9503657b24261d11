// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token, password and identity primitives.

# Access and Refresh Tokens

TokenIssuer signs HS256 JWTs with two distinct secrets:

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
	})
	access, err := issuer.AccessToken(user.ID)
	userID, err := issuer.VerifyAccess(access)

Access tokens are stateless (subject + expiry). Refresh tokens also carry a
random jti; the account service stores the current one on the user record,
so a refresh token is only honoured while it is the stored value.

Verification failures are classified as apperr.InvalidToken, with the message
"access token expired" when only the expiry check failed.

# Passwords

Argon2idHasher stores passwords in PHC string format:

	hash, err := auth.NewArgon2idHasher().Hash(password)
	ok, err := hasher.Verify(password, hash)

# Request Identity

The bearer middleware resolves the user and attaches it to the context:

	user, ok := auth.UserFromContext(r.Context())

# ID Generation

	id := auth.NewID() // UUID v4 string
*/
package auth
