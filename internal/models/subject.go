package models

// Subject is taught to a class. Average is derived by result computation.
type Subject struct {
	ID       string   `db:"id" json:"id"`
	SchoolID string   `db:"school_id" json:"school_id"`
	ClassID  string   `db:"class_id" json:"class_id"`
	TermID   *string  `db:"term_id" json:"term_id,omitempty"`
	Name     string   `db:"name" json:"name"`
	Average  *float64 `db:"average" json:"average,omitempty"`
}
