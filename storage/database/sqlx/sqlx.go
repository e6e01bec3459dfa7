// Package sqlxrepos implements the repositories on PostgreSQL or SQLite through sqlx.
// Queries are written with `?` placeholders and rebound to the driver's bindvar type.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
)

// isUniqueViolation reports whether err is a primary key or unique constraint failure.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// likePattern returns a pattern matching s anywhere, to use with `LOWER(col) LIKE ?`.
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// whereClause joins conditions with AND.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// storeError wraps err as a store failure unless it is sql.ErrNoRows, which is replaced by notFound.
func storeError(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return core.NewStoreError(err, msg)
}

type executor interface {
	sqlx.ExtContext
	Rebind(query string) string
}

var (
	_ executor = (*sqlx.DB)(nil)
	_ executor = (*sqlx.Tx)(nil)
)
