// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages the schema.

# Drivers

Two drivers are registered:

  - postgres: github.com/lib/pq (production)
  - sqlite: modernc.org/sqlite (local development and tests, no cgo)

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection and have foreign keys
enabled.

# Schema

	err := db.CreateSchema(conn)

Creates tables if they don't exist:

  - app_user: accounts, password hash, single live refresh token
  - article: title, content, image URL, author
  - article_like: (article_id, user_id) set
  - article_comment: append-only comments ordered by position

The DDL and every query in the store package use only SQL understood by both
PostgreSQL and SQLite ($N placeholders, CURRENT_TIMESTAMP, ON CONFLICT).
*/
package db
