package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
)

func newReleaseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestReleaseRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newReleaseRepoMock(t)
	defer cleanup()
	repo := NewReleaseRepository(db)

	mock.ExpectExec("INSERT INTO result_releases").
		WithArgs(sqlmock.AnyArg(), "school-1", "term-1", "session-1", false, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	release := &models.ResultRelease{SchoolID: "school-1", TermID: "term-1", SessionID: "session-1"}
	require.NoError(t, repo.Create(context.Background(), release))
	assert.NotEmpty(t, release.ID)
	assert.False(t, release.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseRepositoryFindByPeriodAndPublish(t *testing.T) {
	db, mock, cleanup := newReleaseRepoMock(t)
	defer cleanup()
	repo := NewReleaseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "school_id", "term_id", "session_id", "is_published", "release_date", "created_at"}).
		AddRow("rel-1", "school-1", "term-1", "session-1", false, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE school_id = $1 AND term_id = $2 AND session_id = $3")).
		WithArgs("school-1", "term-1", "session-1").
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE result_releases SET is_published = $3, release_date = $4")).
		WithArgs("school-1", "rel-1", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	release, err := repo.FindByPeriod(context.Background(), "school-1", "term-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, "rel-1", release.ID)
	require.NoError(t, repo.SetPublished(context.Background(), "school-1", release.ID, true, &now))
	require.NoError(t, mock.ExpectationsWereMet())
}
