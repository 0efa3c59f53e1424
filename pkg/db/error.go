package db

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

var (
	// SQLite: "UNIQUE constraint failed: pokemons.name"
	sqliteUniqueColumn = regexp.MustCompile(`UNIQUE constraint failed: [\w]+\.([\w]+)`)
	// MySQL: "Error 1062 (23000): Duplicate entry 'x' for key 'pokemons.ux_pokemons_name'"
	mysqlUniqueKey = regexp.MustCompile(`for key '([\w.]+)'`)
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		return true
	case strings.Contains(msg, "Error 1062"):
		return true
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return true
	}

	return false
}

// DuplicateKeyName returns the constraint, index or column reported by the
// driver for a unique violation. It returns "" when the driver does not
// name it.
func DuplicateKeyName(err error) string {
	if !IsDuplicateKeyErr(err) {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	msg := err.Error()
	if m := sqliteUniqueColumn.FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	if m := mysqlUniqueKey.FindStringSubmatch(msg); len(m) == 2 {
		key := m[1]
		if idx := strings.LastIndex(key, "."); idx >= 0 {
			key = key[idx+1:]
		}
		return key
	}
	return ""
}
