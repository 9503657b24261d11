// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package account implements registration, login and the refresh-token session
lifecycle on top of store.UserStore.

# Sessions

A successful register or login issues a token pair. The access token is
returned to the caller; the refresh token is persisted on the user record,
overwriting any previous value, and handed to the HTTP layer for the
refresh cookie. Each user therefore has at most one live refresh token, so
a login on a second device invalidates the first device's refresh token.

Refresh verifies the presented token, then requires it to equal the stored
value exactly. It issues a new access token and leaves the refresh token
unchanged.

Logout clears the stored token. Logging out twice succeeds both times.

# Uploads

Register and UpdateAvatar take the path of a temporary file holding the
avatar. The file is always removed, including when validation fails before
the image host is contacted.
*/
package account
