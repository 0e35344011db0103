package models

import "time"

// Term is a school-scoped reporting term (e.g. "First Term").
type Term struct {
	ID        string     `db:"id" json:"id"`
	SchoolID  string     `db:"school_id" json:"school_id"`
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsCurrent bool       `db:"is_current" json:"is_current"`
}

// AcademicSession is a school year (e.g. "2024/2025").
type AcademicSession struct {
	ID        string     `db:"id" json:"id"`
	SchoolID  string     `db:"school_id" json:"school_id"`
	Name      string     `db:"name" json:"name"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsCurrent bool       `db:"is_current" json:"is_current"`
}

// ReportingPeriod pairs the current term and session of a school.
type ReportingPeriod struct {
	Term    Term            `json:"term"`
	Session AcademicSession `json:"session"`
}
