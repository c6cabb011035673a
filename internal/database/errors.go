package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

const (
	pgUniqueViolation     pq.ErrorCode = "23505"
	pgForeignKeyViolation pq.ErrorCode = "23503"
)

// IsUniqueViolation reports whether err is a unique violation on the named
// constraint (any constraint when empty).
func IsUniqueViolation(err error, constraint string) bool {
	return matchViolation(err, pgUniqueViolation, "duplicate key value violates unique constraint", constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation on the
// named constraint (any constraint when empty).
func IsForeignKeyViolation(err error, constraint string) bool {
	return matchViolation(err, pgForeignKeyViolation, "violates foreign key constraint", constraint)
}

func matchViolation(err error, code pq.ErrorCode, text, constraint string) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code && (constraint == "" || pqErr.Constraint == constraint)
	}

	// Drivers wrapped by other layers only leave the server message behind
	msg := err.Error()
	if !strings.Contains(msg, text) {
		return false
	}
	return constraint == "" || strings.Contains(msg, `"`+constraint+`"`)
}
