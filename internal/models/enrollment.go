package models

import "time"

// Enrollment captures a student's membership of a class for one term and session.
// Total, Average and Position are derived by result computation.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	SchoolID   string    `db:"school_id" json:"school_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	TermID     string    `db:"term_id" json:"term_id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Total      *float64  `db:"total" json:"total,omitempty"`
	Average    *float64  `db:"average" json:"average,omitempty"`
	Position   *int      `db:"position" json:"position,omitempty"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentStanding is the derived cross-subject standing written back onto an enrollment.
type EnrollmentStanding struct {
	EnrollmentID string  `db:"id" json:"enrollment_id"`
	Total        float64 `db:"total" json:"total"`
	Average      float64 `db:"average" json:"average"`
	Position     int     `db:"position" json:"position"`
}
