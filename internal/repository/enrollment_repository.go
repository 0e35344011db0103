package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

const enrollmentColumns = `id, student_id, school_id, class_id, term_id, session_id, total, average, position, enrolled_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListForComputation returns the enrollments of a class for the scope in enrollment order.
// The order is the tie-break for class positions and must stay deterministic.
func (r *EnrollmentRepository) ListForComputation(ctx context.Context, scope models.ComputationScope, classID string) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
        WHERE school_id = $1 AND class_id = $2 AND term_id = $3 AND session_id = $4
        ORDER BY enrolled_at ASC, id ASC`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, scope.SchoolID, classID, scope.TermID, scope.SessionID); err != nil {
		return nil, fmt.Errorf("list class enrollments: %w", err)
	}
	return enrollments, nil
}

// FindForStudent returns the enrollment of a student in a class for one term and session.
func (r *EnrollmentRepository) FindForStudent(ctx context.Context, scope models.ComputationScope, classID, studentID string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
        WHERE school_id = $1 AND class_id = $2 AND term_id = $3 AND session_id = $4 AND student_id = $5`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, scope.SchoolID, classID, scope.TermID, scope.SessionID, studentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountInClass returns the class size for the scope.
func (r *EnrollmentRepository) CountInClass(ctx context.Context, scope models.ComputationScope, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE school_id = $1 AND class_id = $2 AND term_id = $3 AND session_id = $4`
	var total int
	if err := r.db.GetContext(ctx, &total, query, scope.SchoolID, classID, scope.TermID, scope.SessionID); err != nil {
		return 0, fmt.Errorf("count class enrollments: %w", err)
	}
	return total, nil
}
