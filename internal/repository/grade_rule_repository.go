package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

// GradeRuleRepository reads grading rules.
type GradeRuleRepository struct {
	db *sqlx.DB
}

// NewGradeRuleRepository constructs the repository.
func NewGradeRuleRepository(db *sqlx.DB) *GradeRuleRepository {
	return &GradeRuleRepository{db: db}
}

// ListBySchool returns the grade rules in stored order. First match wins, so order matters.
func (r *GradeRuleRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.GradeRule, error) {
	const query = `SELECT id, school_id, min_score, max_score, grade, comment, created_at FROM grade_rules WHERE school_id = $1 ORDER BY created_at ASC, id ASC`
	var rules []models.GradeRule
	if err := r.db.SelectContext(ctx, &rules, query, schoolID); err != nil {
		return nil, fmt.Errorf("list grade rules: %w", err)
	}
	return rules, nil
}
