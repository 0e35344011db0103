package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestComputationRunRepositoryLifecycle(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewComputationRunRepository(db)

	mock.ExpectExec("INSERT INTO computation_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE computation_runs SET").WillReturnResult(sqlmock.NewResult(0, 1))

	run := &models.ComputationRun{SchoolID: "school-1", Status: models.ComputationRunQueued, CreatedBy: "admin"}
	require.NoError(t, repo.Create(context.Background(), run))
	require.NotEmpty(t, run.ID)

	finished := time.Now()
	run.Status = models.ComputationRunSucceeded
	run.Enrollments = 3
	run.FinishedAt = &finished
	require.NoError(t, repo.Update(context.Background(), run))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComputationRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewComputationRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "school_id", "term_id", "session_id", "status", "enrollments", "error_message", "created_by", "created_at", "started_at", "finished_at"}).
		AddRow("run-1", "school-1", "term-1", "session-1", "FAILED", 0, "no current term", "admin", time.Now(), nil, nil)
	mock.ExpectQuery("FROM computation_runs WHERE school_id = \\$1 AND id = \\$2").
		WithArgs("school-1", "run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "school-1", "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.ComputationRunFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Equal(t, "no current term", *run.ErrorMessage)
}
