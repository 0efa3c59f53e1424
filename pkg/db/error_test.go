package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"postgres", &pgconn.PgError{Code: "23505", ConstraintName: "ux_pokemons_no"}, true},
		{"postgres other code", &pgconn.PgError{Code: "23503"}, false},
		{"mysql", errors.New("Error 1062 (23000): Duplicate entry 'pikachu' for key 'pokemons.ux_pokemons_name'"), true},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: pokemons.name (2067)"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestDuplicateKeyName(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_pokemons_name"})
	assert.Equal(t, "ux_pokemons_name", DuplicateKeyName(wrapped))

	assert.Equal(t, "no", DuplicateKeyName(errors.New("constraint failed: UNIQUE constraint failed: pokemons.no (2067)")))
	assert.Equal(t, "ux_pokemons_name", DuplicateKeyName(errors.New("Error 1062 (23000): Duplicate entry 'pikachu' for key 'pokemons.ux_pokemons_name'")))
	assert.Equal(t, "", DuplicateKeyName(gorm.ErrDuplicatedKey))
	assert.Equal(t, "", DuplicateKeyName(errors.New("boom")))
}
