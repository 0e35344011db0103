package models

import "time"

const (
	// GradeNotAvailable is reported when no grade rule matches a score.
	GradeNotAvailable = "N/A"
	// CommentOutOfRange accompanies GradeNotAvailable.
	CommentOutOfRange = "Score out of range"
)

// GradeRule maps the closed score range [MinScore, MaxScore] to a grade and comment.
type GradeRule struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	MinScore  float64   `db:"min_score" json:"min_score"`
	MaxScore  float64   `db:"max_score" json:"max_score"`
	Grade     string    `db:"grade" json:"grade"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GradeOutcome is the grade and comment assigned to a score.
type GradeOutcome struct {
	Grade   string `json:"grade"`
	Comment string `json:"comment"`
}
