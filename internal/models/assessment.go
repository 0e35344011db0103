package models

// ScoreNotEntered marks an assessment score that has not been graded yet.
const ScoreNotEntered = -1

// Assessment is a named component (e.g. "1st Test") summed into subject totals.
type Assessment struct {
	ID       string `db:"id" json:"id"`
	SchoolID string `db:"school_id" json:"school_id"`
	Name     string `db:"name" json:"name"`
	MaxScore int    `db:"max_score" json:"max_score"`
}

// AssessmentScore is a student's score on one assessment for one result.
type AssessmentScore struct {
	ID           string `db:"id" json:"id"`
	ResultID     string `db:"result_id" json:"result_id"`
	AssessmentID string `db:"assessment_id" json:"assessment_id"`
	Score        int    `db:"score" json:"score"`
}

// ResultScore is an assessment score joined with the result key it belongs to.
type ResultScore struct {
	ResultID     string `db:"result_id" json:"result_id"`
	StudentID    string `db:"student_id" json:"student_id"`
	SubjectID    string `db:"subject_id" json:"subject_id"`
	AssessmentID string `db:"assessment_id" json:"assessment_id"`
	Score        int    `db:"score" json:"score"`
}
