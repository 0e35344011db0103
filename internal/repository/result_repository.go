package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

// ResultRepository persists results, their assessment scores and derived standings.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs the repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// ListScoresForClass returns every assessment score recorded against results of a class in scope.
func (r *ResultRepository) ListScoresForClass(ctx context.Context, scope models.ComputationScope, classID string) ([]models.ResultScore, error) {
	const query = `SELECT r.id AS result_id, r.student_id, r.subject_id, s.assessment_id, s.score
        FROM results r
        JOIN assessment_scores s ON s.result_id = r.id
        WHERE r.school_id = $1 AND r.class_id = $2 AND r.term_id = $3 AND r.session_id = $4
        ORDER BY r.student_id, r.subject_id, s.assessment_id`
	var scores []models.ResultScore
	if err := r.db.SelectContext(ctx, &scores, query, scope.SchoolID, classID, scope.TermID, scope.SessionID); err != nil {
		return nil, fmt.Errorf("list class scores: %w", err)
	}
	return scores, nil
}

// ApplyComputation writes every derived field of a run in a single transaction.
// Results are upserted by their composite key so a missing row is created and an
// existing row keeps its ID.
func (r *ResultRepository) ApplyComputation(ctx context.Context, batch models.ComputationBatch) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin computation write-back: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const upsertResult = `INSERT INTO results (id, school_id, student_id, subject_id, class_id, term_id, session_id, total_score, grade, comment, position, highest_score, lowest_score, updated_at)
        VALUES (:id, :school_id, :student_id, :subject_id, :class_id, :term_id, :session_id, :total_score, :grade, :comment, :position, :highest_score, :lowest_score, :updated_at)
        ON CONFLICT (student_id, subject_id, class_id, term_id, session_id)
        DO UPDATE SET total_score = EXCLUDED.total_score, grade = EXCLUDED.grade, comment = EXCLUDED.comment,
            position = EXCLUDED.position, highest_score = EXCLUDED.highest_score, lowest_score = EXCLUDED.lowest_score,
            updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range batch.Results {
		result := batch.Results[i]
		if result.ID == "" {
			result.ID = uuid.NewString()
		}
		if result.UpdatedAt.IsZero() {
			result.UpdatedAt = now
		}
		if _, err = tx.NamedExecContext(ctx, upsertResult, result); err != nil {
			return fmt.Errorf("upsert result: %w", err)
		}
	}

	const updateSubject = `UPDATE subjects SET average = $2 WHERE id = $1 AND school_id = $3`
	const updateExtremes = `UPDATE results SET highest_score = $1, lowest_score = $2, updated_at = $3
        WHERE school_id = $4 AND subject_id = $5 AND class_id = $6 AND term_id = $7 AND session_id = $8`
	for _, subject := range batch.Subjects {
		if _, err = tx.ExecContext(ctx, updateSubject, subject.SubjectID, subject.Average, batch.Scope.SchoolID); err != nil {
			return fmt.Errorf("update subject average: %w", err)
		}
		if _, err = tx.ExecContext(ctx, updateExtremes, subject.Highest, subject.Lowest, now,
			batch.Scope.SchoolID, subject.SubjectID, subject.ClassID, batch.Scope.TermID, batch.Scope.SessionID); err != nil {
			return fmt.Errorf("update subject extremes: %w", err)
		}
	}

	const updateEnrollment = `UPDATE enrollments SET total = $2, average = $3, position = $4 WHERE id = $1 AND school_id = $5`
	for _, standing := range batch.Enrollments {
		if _, err = tx.ExecContext(ctx, updateEnrollment, standing.EnrollmentID, standing.Total, standing.Average, standing.Position, batch.Scope.SchoolID); err != nil {
			return fmt.Errorf("update enrollment standing: %w", err)
		}
	}

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("computation write-back cancelled: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit computation write-back: %w", err)
	}
	return nil
}

// SubjectLines returns a student's result rows with subject context.
func (r *ResultRepository) SubjectLines(ctx context.Context, scope models.ComputationScope, classID, studentID string) ([]models.SubjectResultLine, error) {
	const query = `SELECT r.id AS result_id, r.subject_id, sub.name AS subject_name, r.total_score, r.grade, r.comment,
            r.position, r.highest_score, r.lowest_score, sub.average AS subject_average
        FROM results r
        JOIN subjects sub ON sub.id = r.subject_id
        WHERE r.school_id = $1 AND r.class_id = $2 AND r.term_id = $3 AND r.session_id = $4 AND r.student_id = $5
        ORDER BY sub.name ASC, sub.id ASC`
	var lines []models.SubjectResultLine
	if err := r.db.SelectContext(ctx, &lines, query, scope.SchoolID, classID, scope.TermID, scope.SessionID, studentID); err != nil {
		return nil, fmt.Errorf("list student result lines: %w", err)
	}
	return lines, nil
}

// AssessmentLines returns the per-assessment scores of the given results keyed by result ID.
func (r *ResultRepository) AssessmentLines(ctx context.Context, resultIDs []string) (map[string][]models.AssessmentScoreLine, error) {
	lines := make(map[string][]models.AssessmentScoreLine, len(resultIDs))
	if len(resultIDs) == 0 {
		return lines, nil
	}
	query, args, err := sqlx.In(`SELECT s.result_id, s.assessment_id, a.name AS assessment_name, a.max_score, s.score
        FROM assessment_scores s
        JOIN assessments a ON a.id = s.assessment_id
        WHERE s.result_id IN (?)
        ORDER BY a.created_at ASC, a.id ASC`, resultIDs)
	if err != nil {
		return nil, fmt.Errorf("build assessment lines query: %w", err)
	}
	rows := []struct {
		ResultID string `db:"result_id"`
		models.AssessmentScoreLine
	}{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list assessment lines: %w", err)
	}
	for _, row := range rows {
		lines[row.ResultID] = append(lines[row.ResultID], row.AssessmentScoreLine)
	}
	return lines, nil
}

// MasterSheetRows returns the enrollments of a class with student names ordered by position.
// Unranked enrollments sort last in enrollment order.
func (r *ResultRepository) MasterSheetRows(ctx context.Context, scope models.ComputationScope, classID string) ([]models.MasterSheetRow, error) {
	const query = `SELECT e.id AS enrollment_id, e.student_id, st.full_name AS student_name, e.total, e.average, e.position
        FROM enrollments e
        JOIN students st ON st.id = e.student_id
        WHERE e.school_id = $1 AND e.class_id = $2 AND e.term_id = $3 AND e.session_id = $4
        ORDER BY e.position ASC NULLS LAST, e.enrolled_at ASC, e.id ASC`
	var rows []models.MasterSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, scope.SchoolID, classID, scope.TermID, scope.SessionID); err != nil {
		return nil, fmt.Errorf("list master sheet rows: %w", err)
	}
	return rows, nil
}

// MasterSheetScores returns every subject total of a class in scope.
func (r *ResultRepository) MasterSheetScores(ctx context.Context, scope models.ComputationScope, classID string) ([]models.MasterSheetScore, error) {
	const query = `SELECT student_id, subject_id, total_score FROM results
        WHERE school_id = $1 AND class_id = $2 AND term_id = $3 AND session_id = $4`
	var scores []models.MasterSheetScore
	if err := r.db.SelectContext(ctx, &scores, query, scope.SchoolID, classID, scope.TermID, scope.SessionID); err != nil {
		return nil, fmt.Errorf("list master sheet scores: %w", err)
	}
	return scores, nil
}

// CountPendingScores counts assessment scores still holding the not-entered sentinel.
func (r *ResultRepository) CountPendingScores(ctx context.Context, filter models.AssessmentStatusFilter) (int, error) {
	const query = `SELECT COUNT(*) FROM assessment_scores s
        JOIN results r ON r.id = s.result_id
        WHERE r.school_id = $1 AND r.class_id = $2 AND r.subject_id = $3 AND r.term_id = $4 AND r.session_id = $5 AND s.score = $6`
	var pending int
	if err := r.db.GetContext(ctx, &pending, query, filter.SchoolID, filter.ClassID, filter.SubjectID, filter.TermID, filter.SessionID, models.ScoreNotEntered); err != nil {
		return 0, fmt.Errorf("count pending scores: %w", err)
	}
	return pending, nil
}
