// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). Each request gets an id, taken from X-Request-ID when the
caller sends one, which is echoed back in the response and attached to the
context so every log line for the request carries request_id.

# Metrics

	middleware.Instrument(m, "GET /api/v1/article/{id}", handler)

Counts requests by method, route pattern and status, and observes latency.

# Authentication

	protected := middleware.RequireAuth(issuer, userStore)
	mux.HandleFunc("POST /api/v1/article/create", protected(h.Create))

Requires an Authorization: Bearer <access token> header. Failures:

  - missing or malformed header: 401 "Unauthorized - No access token provided"
  - bad signature or expired token: 401
  - user no longer exists: 401 "Unauthorized - User not found"

The resolved user is available via auth.UserFromContext. Cookies are never
consulted here; the refresh cookie is only read by the refresh endpoint.

# Rate Limiting

	limiter := middleware.NewRateLimiter(cfg.AIRateLimit, cfg.TrustedProxies)
	mux.HandleFunc("POST /api/v1/ai/ask", limiter.Limit(h.AskOpenAI))

A token bucket per client IP. Over-limit requests get 429 with Retry-After.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigin)(mux),
	}

Credentialed requests are allowed from the configured origin so the browser
sends the refresh cookie.

# JSON Helpers

Success responses use the envelope {statusCode, data, message, success}:

	middleware.Respond(w, http.StatusOK, article, "Article updated")

Errors use {status, error, message}:

	middleware.WriteError(w, r, err)                  // status from apperr
	middleware.ErrorResponse(w, http.StatusTooManyRequests, "message")

Parse JSON request bodies:

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

# Client IP Extraction

Get the client IP. X-Forwarded-For and X-Real-IP are only believed when the
connection comes from one of the configured trusted proxies (TRUSTED_PROXIES);
otherwise the connection address is used:

	ip := middleware.GetClientIP(r, cfg.TrustedProxies)

Used as the rate limiter key.
*/
package middleware
