package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

// TermRepository resolves the reporting period of a school.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindCurrentTerm returns the term flagged as current, or sql.ErrNoRows.
func (r *TermRepository) FindCurrentTerm(ctx context.Context, schoolID string) (*models.Term, error) {
	const query = `SELECT id, school_id, name, start_date, end_date, is_current FROM terms WHERE school_id = $1 AND is_current = TRUE LIMIT 1`
	var term models.Term
	if err := r.db.GetContext(ctx, &term, query, schoolID); err != nil {
		return nil, err
	}
	return &term, nil
}

// FindCurrentSession returns the academic session flagged as current, or sql.ErrNoRows.
func (r *TermRepository) FindCurrentSession(ctx context.Context, schoolID string) (*models.AcademicSession, error) {
	const query = `SELECT id, school_id, name, start_date, end_date, is_current FROM academic_sessions WHERE school_id = $1 AND is_current = TRUE LIMIT 1`
	var session models.AcademicSession
	if err := r.db.GetContext(ctx, &session, query, schoolID); err != nil {
		return nil, err
	}
	return &session, nil
}
