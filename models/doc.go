// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain types and API request/response shapes.

# Domain Types

  - User: account with hashed password and at most one live refresh token
  - Article: title, content, image URL, author, like-set and comments
  - Comment: embedded in an article, append-only
  - UserSummary: author/commenter identity resolved for display

Secret fields (PasswordHash, RefreshToken) are tagged json:"-" and never
serialized.

# Envelopes

Successful responses are wrapped in APIResponse:

	{"statusCode": 200, "data": {...}, "message": "...", "success": true}

Errors use ErrorResponse:

	{"status": 403, "error": "Forbidden", "message": "Unauthorized to delete this article", "success": false}

# Identifiers

IDs are UUID strings serialized under "_id", matching what the web client
reads.
*/
package models
