// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type (postgres or sqlite)
	--access-secret   Access token secret
	--refresh-secret  Refresh token secret
	--cors-origin     Allowed CORS origin
	--upload-dir      Directory for temporary uploads
	--log-format      json or text

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p (default 8001)
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t (default postgres)
	ACCESS_TOKEN_SECRET  → --access-secret
	REFRESH_TOKEN_SECRET → --refresh-secret
	CORS_ORIGIN          → --cors-origin
	UPLOAD_DIR           → --upload-dir (default os.TempDir())
	LOG_FORMAT           → --log-format
	TRUSTED_PROXIES      → --trusted-proxies (comma-separated IPs or CIDRs)

Token lifetimes, image host credentials and assistant keys are read from
the environment only: ACCESS_TOKEN_EXPIRY, REFRESH_TOKEN_EXPIRY,
CLOUDINARY_*, GEMINI_API_KEY, GEMINI_MODEL, OPENAI_API_KEY, OPENAI_MODEL
and AI_RATE_LIMIT. APP_ENV (or NODE_ENV) set to "production" enables secure
cookies.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not postgres or sqlite
  - either token secret is missing, or both are the same
  - a duration or AI_RATE_LIMIT does not parse
  - a TRUSTED_PROXIES entry is not an IP or CIDR
*/
package cliparse
