// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ThinkShare API server.

ThinkShare is a blogging backend: accounts with JWT sessions, articles with
likes and comments, image hosting for avatars and covers, and a writing
assistant backed by Gemini or OpenAI.

# Starting the Server

The server reads a .env file if present, then environment variables or
CLI flags:

	DATABASE_URL=postgres://... ACCESS_TOKEN_SECRET=... REFRESH_TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 8001 -t sqlite -d thinkshare.db --access-secret a --refresh-secret b

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string or SQLite file
  - ACCESS_TOKEN_SECRET (--access-secret): Access token signing key
  - REFRESH_TOKEN_SECRET (--refresh-secret): Refresh token signing key

Optional settings:

  - PORT (-p): Server port (default: 8001)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - ACCESS_TOKEN_EXPIRY, REFRESH_TOKEN_EXPIRY: Go durations
  - CORS_ORIGIN: Allowed browser origin
  - APP_ENV=production: Secure, SameSite=Strict refresh cookie
  - CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET
  - GEMINI_API_KEY, GEMINI_MODEL, OPENAI_API_KEY, OPENAI_MODEL
  - AI_RATE_LIMIT: Assistant requests per minute per client
  - TRUSTED_PROXIES: Proxies allowed to set X-Forwarded-For / X-Real-IP
  - LOG_FORMAT, LOG_LEVEL

# Architecture

  - handlers: HTTP request handlers (auth, articles, assistant, health)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Bearer auth, CORS, logging, rate limiting, JSON helpers
  - account, articles: Domain services
  - store: SQL persistence
  - media: Temporary uploads and the image host
  - assistant: Text generation providers
  - client: Go SDK with a local state store
  - auth, apperr, logging, metrics, models, db, cliparse: Support packages

See package documentation for each component.
*/
package main
