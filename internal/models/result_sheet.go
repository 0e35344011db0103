package models

// AssessmentScoreLine is one assessment column of a subject line.
type AssessmentScoreLine struct {
	AssessmentID   string `db:"assessment_id" json:"assessment_id"`
	AssessmentName string `db:"assessment_name" json:"assessment_name"`
	MaxScore       int    `db:"max_score" json:"max_score"`
	Score          int    `db:"score" json:"score"`
}

// SubjectResultLine is the read model of one Result row with its subject context.
type SubjectResultLine struct {
	ResultID       string                `db:"result_id" json:"result_id"`
	SubjectID      string                `db:"subject_id" json:"subject_id"`
	SubjectName    string                `db:"subject_name" json:"subject_name"`
	TotalScore     int                   `db:"total_score" json:"total_score"`
	Grade          string                `db:"grade" json:"grade"`
	Comment        string                `db:"comment" json:"comment"`
	Position       *int                  `db:"position" json:"position,omitempty"`
	PositionLabel  string                `db:"-" json:"position_label,omitempty"`
	HighestScore   *int                  `db:"highest_score" json:"highest_score,omitempty"`
	LowestScore    *int                  `db:"lowest_score" json:"lowest_score,omitempty"`
	SubjectAverage *float64              `db:"subject_average" json:"subject_average,omitempty"`
	Assessments    []AssessmentScoreLine `db:"-" json:"assessments"`
}

// StudentResultSheet is the per-student view of a computed term.
type StudentResultSheet struct {
	StudentID       string              `json:"student_id"`
	ClassID         string              `json:"class_id"`
	TermID          string              `json:"term_id"`
	SessionID       string              `json:"session_id"`
	Subjects        []SubjectResultLine `json:"subjects"`
	Total           *float64            `json:"total,omitempty"`
	Average         *float64            `json:"average,omitempty"`
	Position        *int                `json:"position,omitempty"`
	PositionLabel   string              `json:"position_label,omitempty"`
	ClassSize       int                 `json:"class_size"`
	PrincipalRemark string              `json:"principal_remark"`
}

// MasterSheetRow is one student row of a class master score sheet.
type MasterSheetRow struct {
	EnrollmentID string         `db:"enrollment_id" json:"enrollment_id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	StudentName  string         `db:"student_name" json:"student_name"`
	Scores       map[string]int `db:"-" json:"scores"`
	Total        *float64       `db:"total" json:"total,omitempty"`
	Average      *float64       `db:"average" json:"average,omitempty"`
	Position     *int           `db:"position" json:"position,omitempty"`
}

// MasterSheet is the class-wide score sheet ordered by position.
type MasterSheet struct {
	ClassID   string           `json:"class_id"`
	TermID    string           `json:"term_id"`
	SessionID string           `json:"session_id"`
	Subjects  []Subject        `json:"subjects"`
	Rows      []MasterSheetRow `json:"rows"`
}

// MasterSheetScore is a flat (enrollment, subject, total) row used to assemble a MasterSheet.
type MasterSheetScore struct {
	StudentID  string `db:"student_id"`
	SubjectID  string `db:"subject_id"`
	TotalScore int    `db:"total_score"`
}

// AssessmentStatusFilter scopes the assessment completeness check.
type AssessmentStatusFilter struct {
	SchoolID  string
	ClassID   string
	SubjectID string
	TermID    string
	SessionID string
}

// AssessmentStatus reports whether every assessment score in scope has been entered.
type AssessmentStatus struct {
	Complete bool   `json:"status"`
	Pending  int    `json:"pending"`
	Message  string `json:"message"`
}
