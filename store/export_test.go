// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
)

const MaxCommentAttempts = maxCommentAttempts

// SetBeforeCommentInsert installs fn to run inside the comment transaction
// just before the insert.
func (s *SQLStore) SetBeforeCommentInsert(fn func(ctx context.Context, exec func(query string, args ...any) (sql.Result, error), articleID string, position int64) error) {
	s.beforeCommentInsert = func(ctx context.Context, q querier, articleID string, position int64) error {
		exec := func(query string, args ...any) (sql.Result, error) {
			return q.ExecContext(ctx, query, args...)
		}
		return fn(ctx, exec, articleID, position)
	}
}

// IsUniqueViolation exposes the driver-specific constraint check.
var IsUniqueViolation = isUniqueViolation
