package models

import "time"

// Result is a student's computed outcome in one subject for one class, term and session.
type Result struct {
	ID           string    `db:"id" json:"id"`
	SchoolID     string    `db:"school_id" json:"school_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	TermID       string    `db:"term_id" json:"term_id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	TotalScore   int       `db:"total_score" json:"total_score"`
	Grade        string    `db:"grade" json:"grade"`
	Comment      string    `db:"comment" json:"comment"`
	Position     *int      `db:"position" json:"position,omitempty"`
	HighestScore *int      `db:"highest_score" json:"highest_score,omitempty"`
	LowestScore  *int      `db:"lowest_score" json:"lowest_score,omitempty"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ResultKey is the composite identity of a Result.
type ResultKey struct {
	StudentID string
	SubjectID string
	ClassID   string
	TermID    string
	SessionID string
}

// Key returns the composite identity of the result.
func (r Result) Key() ResultKey {
	return ResultKey{StudentID: r.StudentID, SubjectID: r.SubjectID, ClassID: r.ClassID, TermID: r.TermID, SessionID: r.SessionID}
}
