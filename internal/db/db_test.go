package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithStatementTimeout(t *testing.T) {
	t.Run("Adds timeout in milliseconds", func(t *testing.T) {
		dsn, err := withStatementTimeout("postgres://u:p@localhost:5432/warnetbook?sslmode=disable", 5*time.Second)
		require.NoError(t, err)

		assert.Contains(t, dsn, "statement_timeout=5000")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("Zero leaves url untouched", func(t *testing.T) {
		in := "postgres://u:p@localhost:5432/warnetbook"
		dsn, err := withStatementTimeout(in, 0)
		require.NoError(t, err)
		assert.Equal(t, in, dsn)
	})
}

func TestExists(t *testing.T) {
	database, mock, close := setupTxMock(t)
	defer close()

	query := "SELECT EXISTS(SELECT 1 FROM venues WHERE id = $1)"

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := Exists(context.Background(), database, query, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
