package models

import "time"

// Student is the minimal student profile needed by result sheets.
type Student struct {
	ID          string     `db:"id" json:"id"`
	SchoolID    string     `db:"school_id" json:"school_id"`
	FullName    string     `db:"full_name" json:"full_name"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
}
