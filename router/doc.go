// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ThinkShare API.

# Route Registration

NewRouter builds a CORS-wrapped http.Handler from the application services:

	handler := router.NewRouter(router.Deps{DB: db, Config: cfg, ...})

Every API route is mounted under /api/v1 and wrapped with request logging
and Prometheus instrumentation.

# Endpoints

Session:

	POST /auth/register      - Create account (multipart, avatar)
	POST /auth/login         - Exchange credentials for tokens
	POST /auth/refresh-token - New access token from the refresh cookie
	POST /auth/logout        - Revoke the refresh token (bearer)
	GET  /auth/me            - Current user (bearer)
	PUT  /auth/profile       - Update bio and links (bearer)
	POST /auth/update-avatar - Replace avatar (bearer, multipart)

Articles:

	POST   /article/create       - Publish (bearer, multipart)
	GET    /article/all          - List, newest first
	GET    /article/user/{id}    - List by author
	GET    /article/{id}         - Fetch one
	PUT    /article/{id}         - Edit (author only)
	DELETE /article/{id}         - Delete (author only)
	POST   /article/{id}/like    - Toggle like (bearer)
	POST   /article/{id}/comment - Comment (bearer)

Writing assistant (rate limited per client IP):

	POST /gemini/ask
	POST /ai/ask

Outside the prefix:

	GET /health  - Database ping
	GET /metrics - Prometheus exposition
	GET /        - Banner
*/
package router
