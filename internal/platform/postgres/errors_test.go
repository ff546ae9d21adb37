package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/vocab-drill/internal/platform/postgres"
	"github.com/phrazzld/vocab-drill/internal/store"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "words",
		ColumnName:     "translation",
		ConstraintName: "words_translation_not_blank",
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "no rows", err: sql.ErrNoRows, target: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), target: store.ErrDuplicate},
		{name: "check violation", err: newPgError("23514"), target: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), target: store.ErrInvalidEntity},
		{name: "serialization failure", err: newPgError("40001"), target: store.ErrUnavailable},
		{name: "deadlock", err: newPgError("40P01"), target: store.ErrUnavailable},
		{name: "connection failure", err: newPgError("08006"), target: store.ErrUnavailable},
		{name: "too many connections", err: newPgError("53300"), target: store.ErrUnavailable},
		{name: "admin shutdown", err: newPgError("57P01"), target: store.ErrUnavailable},
		{name: "conn done", err: sql.ErrConnDone, target: store.ErrUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, target: store.ErrUnavailable},
		{
			name:   "wrapped unique violation",
			err:    fmt.Errorf("insert failed: %w", newPgError("23505")),
			target: store.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.target)
		})
	}
}

func TestMapError_Unmapped(t *testing.T) {
	assert.NoError(t, postgres.MapError(nil))

	syntax := newPgError("42601")
	assert.Equal(t, error(syntax), postgres.MapError(syntax))

	plain := errors.New("plain")
	assert.Equal(t, plain, postgres.MapError(plain))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23514")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("x")))
}

func TestDialectRewritesPlaceholders(t *testing.T) {
	d := postgres.Dialect{}
	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, "postgres", d.GooseDialect())
	assert.Equal(t,
		"UPDATE words SET used = $1 WHERE word = $2 AND used = $3",
		d.RewriteQuery("UPDATE words SET used = ? WHERE word = ? AND used = ?"))
}
