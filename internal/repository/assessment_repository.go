package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

// AssessmentRepository reads the assessment definitions of a school.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListBySchool returns every assessment defined by the school.
func (r *AssessmentRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Assessment, error) {
	const query = `SELECT id, school_id, name, max_score FROM assessments WHERE school_id = $1 ORDER BY created_at ASC, id ASC`
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, schoolID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}
