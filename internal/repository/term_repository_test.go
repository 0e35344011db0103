package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTermRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestTermRepositoryFindCurrent(t *testing.T) {
	db, mock, cleanup := newTermRepoMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	columns := []string{"id", "school_id", "name", "start_date", "end_date", "is_current"}
	mock.ExpectQuery("FROM terms WHERE school_id = \\$1 AND is_current = TRUE").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("term-1", "school-1", "First Term", nil, nil, true))
	mock.ExpectQuery("FROM academic_sessions WHERE school_id = \\$1 AND is_current = TRUE").
		WithArgs("school-1").
		WillReturnRows(sqlmock.NewRows(columns))

	term, err := repo.FindCurrentTerm(context.Background(), "school-1")
	require.NoError(t, err)
	assert.Equal(t, "First Term", term.Name)

	_, err = repo.FindCurrentSession(context.Background(), "school-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
