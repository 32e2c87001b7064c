// Package dbutil holds gorm helpers shared by the repositories.
package dbutil

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IsUniqueViolation reports whether err came from a unique index. TranslateError
// covers postgres; the sqlite driver surfaces the raw message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "duplicate key value") ||
		strings.Contains(message, "SQLSTATE 23505")
}

// ForUpdate locks the selected rows until the transaction ends. SQLite has no
// row locks and already serializes writers, so the clause is skipped there.
func ForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() != "postgres" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Like wraps term for a case-insensitive contains match.
func Like(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
