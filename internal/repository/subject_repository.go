package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

// SubjectRepository reads subjects taught to a class.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByClass returns the subjects of a class ordered by name.
func (r *SubjectRepository) ListByClass(ctx context.Context, schoolID, classID string) ([]models.Subject, error) {
	const query = `SELECT id, school_id, class_id, term_id, name, average FROM subjects WHERE school_id = $1 AND class_id = $2 ORDER BY name ASC, id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, schoolID, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return subjects, nil
}
