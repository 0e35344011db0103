package models

import "time"

// ResultRelease gates student and parent access to results of a term and session.
type ResultRelease struct {
	ID          string     `db:"id" json:"id"`
	SchoolID    string     `db:"school_id" json:"school_id"`
	TermID      string     `db:"term_id" json:"term_id"`
	SessionID   string     `db:"session_id" json:"session_id"`
	IsPublished bool       `db:"is_published" json:"is_published"`
	ReleaseDate *time.Time `db:"release_date" json:"release_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
