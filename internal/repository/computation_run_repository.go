package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

// ComputationRunRepository records computation runs.
type ComputationRunRepository struct {
	db *sqlx.DB
}

// NewComputationRunRepository constructs the repository.
func NewComputationRunRepository(db *sqlx.DB) *ComputationRunRepository {
	return &ComputationRunRepository{db: db}
}

// Create persists a run record.
func (r *ComputationRunRepository) Create(ctx context.Context, run *models.ComputationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO computation_runs (id, school_id, term_id, session_id, status, enrollments, error_message, created_by, created_at, started_at, finished_at)
        VALUES (:id, :school_id, :term_id, :session_id, :status, :enrollments, :error_message, :created_by, :created_at, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create computation run: %w", err)
	}
	return nil
}

// Update stores the lifecycle fields of a run.
func (r *ComputationRunRepository) Update(ctx context.Context, run *models.ComputationRun) error {
	const query = `UPDATE computation_runs SET term_id = :term_id, session_id = :session_id, status = :status,
        enrollments = :enrollments, error_message = :error_message, started_at = :started_at, finished_at = :finished_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("update computation run: %w", err)
	}
	return nil
}

// FindByID returns a run scoped to its school.
func (r *ComputationRunRepository) FindByID(ctx context.Context, schoolID, id string) (*models.ComputationRun, error) {
	const query = `SELECT id, school_id, term_id, session_id, status, enrollments, error_message, created_by, created_at, started_at, finished_at
        FROM computation_runs WHERE school_id = $1 AND id = $2`
	var run models.ComputationRun
	if err := r.db.GetContext(ctx, &run, query, schoolID, id); err != nil {
		return nil, err
	}
	return &run, nil
}
