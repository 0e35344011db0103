package models

import "time"

// ComputationScope identifies one result computation run.
type ComputationScope struct {
	SchoolID  string `json:"school_id"`
	TermID    string `json:"term_id"`
	SessionID string `json:"session_id"`
}

// String renders the scope as a stable lock/cache key fragment.
func (s ComputationScope) String() string {
	return s.SchoolID + ":" + s.TermID + ":" + s.SessionID
}

// ComputedEnrollment is one row of a computation report.
type ComputedEnrollment struct {
	EnrollmentID string  `json:"enrollment_id"`
	StudentID    string  `json:"student_id"`
	ClassID      string  `json:"class_id"`
	Total        float64 `json:"total"`
	Average      float64 `json:"average"`
	Position     int     `json:"position"`
}

// ComputationReport is returned to the caller of a computation run.
type ComputationReport struct {
	RunID            string               `json:"run_id,omitempty"`
	Scope            ComputationScope     `json:"scope"`
	ClassesProcessed int                  `json:"classes_processed"`
	ResultsWritten   int                  `json:"results_written"`
	Results          []ComputedEnrollment `json:"results"`
	ComputedAt       time.Time            `json:"computed_at"`
}

// SubjectAverage carries the class-wide statistics of one subject. Average is written onto the
// subject; Highest and Lowest onto every result row of the subject in the class and period.
type SubjectAverage struct {
	SubjectID string  `db:"id" json:"subject_id"`
	ClassID   string  `db:"class_id" json:"class_id"`
	Average   float64 `db:"average" json:"average"`
	Highest   int     `db:"highest_score" json:"highest_score"`
	Lowest    int     `db:"lowest_score" json:"lowest_score"`
}

// ComputationBatch holds every derived field of a run, flushed in one write-back.
type ComputationBatch struct {
	Scope       ComputationScope
	Results     []Result
	Subjects    []SubjectAverage
	Enrollments []EnrollmentStanding
}

// ComputationRunStatus tracks the lifecycle of a recorded run.
type ComputationRunStatus string

const (
	ComputationRunQueued    ComputationRunStatus = "QUEUED"
	ComputationRunRunning   ComputationRunStatus = "RUNNING"
	ComputationRunSucceeded ComputationRunStatus = "SUCCEEDED"
	ComputationRunFailed    ComputationRunStatus = "FAILED"
)

// ComputationRun is the persisted audit record of a computation run.
type ComputationRun struct {
	ID           string               `db:"id" json:"id"`
	SchoolID     string               `db:"school_id" json:"school_id"`
	TermID       *string              `db:"term_id" json:"term_id,omitempty"`
	SessionID    *string              `db:"session_id" json:"session_id,omitempty"`
	Status       ComputationRunStatus `db:"status" json:"status"`
	Enrollments  int                  `db:"enrollments" json:"enrollments"`
	ErrorMessage *string              `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string               `db:"created_by" json:"created_by"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	StartedAt    *time.Time           `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time           `db:"finished_at" json:"finished_at,omitempty"`
}
