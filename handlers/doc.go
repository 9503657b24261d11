// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ThinkShare API.

# Handler Types

Each handler is a struct over a domain service and the server config:

  - AuthHandler: Registration, login, refresh cookie and profile
  - ArticleHandler: Article CRUD, likes and comments
  - AssistantHandler: Writing assistant prompts
  - HealthHandler: Liveness probe and banner

Handlers are created via constructor functions:

	authHandler := handlers.NewAuthHandler(accounts, cfg, m)

# Session Flow

	POST /auth/register      → Register (multipart, avatar required)
	POST /auth/login         → Login
	POST /auth/refresh-token → RefreshToken (refreshToken cookie)
	POST /auth/logout        → Logout (clears the cookie)

Login and registration return the access token in the body and set the
refresh token as an HTTP-only cookie. Protected handlers expect the user
attached by middleware.RequireAuth.

# Articles

	POST   /article/create       → Create (multipart, image required)
	PUT    /article/{id}         → Update (author only)
	DELETE /article/{id}         → Delete (author only)
	POST   /article/{id}/like    → ToggleLike
	POST   /article/{id}/comment → AddComment

Uploaded files are staged in the configured upload directory and removed
after the request, whether or not the image host accepted them.
*/
package handlers
