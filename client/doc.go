// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go SDK for the ThinkShare API with a local state store.

# Session

A Session holds the current user and access token. It is created explicitly
and passed to the client; nothing is persisted implicitly:

	sess, err := client.LoadSession(f) // or client.NewSession()
	c, err := client.New("http://localhost:8001/api/v1", sess)
	defer c.Close()

Login and Register fill the session, Logout clears it. Save writes a
snapshot that LoadSession restores on the next start. The refresh token
stays in the client's cookie jar, as a browser would keep the cookie.

# Articles

The client keeps an ArticleCache in sync with the responses it receives.
ToggleLike updates the cache before the request and reverts it if the
request fails. Paginator exposes the cache in fixed-size windows.

# Retries

GetArticle retries once after a failure. Logout retries once after
refreshing the access token when the server rejects it as expired.
Nothing else is retried.
*/
package client
