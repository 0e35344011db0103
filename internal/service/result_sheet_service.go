package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type resultSheetReader interface {
	SubjectLines(ctx context.Context, scope models.ComputationScope, classID, studentID string) ([]models.SubjectResultLine, error)
	AssessmentLines(ctx context.Context, resultIDs []string) (map[string][]models.AssessmentScoreLine, error)
	MasterSheetRows(ctx context.Context, scope models.ComputationScope, classID string) ([]models.MasterSheetRow, error)
	MasterSheetScores(ctx context.Context, scope models.ComputationScope, classID string) ([]models.MasterSheetScore, error)
	CountPendingScores(ctx context.Context, filter models.AssessmentStatusFilter) (int, error)
}

type sheetEnrollmentReader interface {
	FindForStudent(ctx context.Context, scope models.ComputationScope, classID, studentID string) (*models.Enrollment, error)
	CountInClass(ctx context.Context, scope models.ComputationScope, classID string) (int, error)
}

type releaseGate interface {
	EnsureReadable(ctx context.Context, role models.UserRole, schoolID, termID, sessionID string) error
}

// StudentSheetQuery selects one student's results. Empty term or session means current.
type StudentSheetQuery struct {
	StudentID string `validate:"required"`
	ClassID   string `form:"class_id" validate:"required"`
	TermID    string `form:"term_id"`
	SessionID string `form:"session_id"`
}

// MasterSheetQuery selects a class score sheet. Empty term or session means current.
type MasterSheetQuery struct {
	ClassID   string `validate:"required"`
	TermID    string `form:"term_id"`
	SessionID string `form:"session_id"`
}

// AssessmentStatusQuery selects the scores checked for completeness.
type AssessmentStatusQuery struct {
	ClassID   string `form:"class_id" validate:"required"`
	SubjectID string `form:"subject_id" validate:"required"`
	TermID    string `form:"term_id"`
	SessionID string `form:"session_id"`
}

// ResultSheetService assembles read models over computed results.
type ResultSheetService struct {
	results     resultSheetReader
	enrollments sheetEnrollmentReader
	subjects    classSubjectLister
	periods     periodResolver
	releases    releaseGate
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewResultSheetService constructs the service.
func NewResultSheetService(results resultSheetReader, enrollments sheetEnrollmentReader, subjects classSubjectLister, periods periodResolver, releases releaseGate, validate *validator.Validate, logger *zap.Logger) *ResultSheetService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultSheetService{
		results:     results,
		enrollments: enrollments,
		subjects:    subjects,
		periods:     periods,
		releases:    releases,
		validator:   validate,
		logger:      logger,
	}
}

// StudentSheet returns a student's result sheet. Students may only read their own sheet and,
// like parents, only once the period is released.
func (s *ResultSheetService) StudentSheet(ctx context.Context, viewer *models.JWTClaims, q StudentSheetQuery) (*models.StudentResultSheet, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result sheet query")
	}
	if viewer.Role == models.RoleStudent && viewer.StudentID != q.StudentID {
		return nil, appErrors.ErrForbidden
	}
	scope, err := s.scope(ctx, viewer.SchoolID, q.TermID, q.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.releases.EnsureReadable(ctx, viewer.Role, scope.SchoolID, scope.TermID, scope.SessionID); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.FindForStudent(ctx, scope, q.ClassID, q.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in the class for the period")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	lines, err := s.results.SubjectLines(ctx, scope, q.ClassID, q.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results")
	}
	ids := make([]string, len(lines))
	for i := range lines {
		ids[i] = lines[i].ResultID
	}
	assessments, err := s.results.AssessmentLines(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment scores")
	}
	for i := range lines {
		lines[i].Assessments = assessments[lines[i].ResultID]
		if lines[i].Assessments == nil {
			lines[i].Assessments = []models.AssessmentScoreLine{}
		}
		if lines[i].Position != nil {
			lines[i].PositionLabel = PositionLabel(*lines[i].Position)
		}
	}
	if lines == nil {
		lines = []models.SubjectResultLine{}
	}

	classSize, err := s.enrollments.CountInClass(ctx, scope, q.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class")
	}

	sheet := &models.StudentResultSheet{
		StudentID: q.StudentID,
		ClassID:   q.ClassID,
		TermID:    scope.TermID,
		SessionID: scope.SessionID,
		Subjects:  lines,
		Total:     enrollment.Total,
		Average:   enrollment.Average,
		Position:  enrollment.Position,
		ClassSize: classSize,
	}
	if enrollment.Position != nil {
		sheet.PositionLabel = PositionLabel(*enrollment.Position)
	}
	if enrollment.Average != nil {
		sheet.PrincipalRemark = PrincipalRemark(*enrollment.Average)
	}
	return sheet, nil
}

// MasterSheet returns every student of a class with per-subject totals, ordered by position.
func (s *ResultSheetService) MasterSheet(ctx context.Context, schoolID string, q MasterSheetQuery) (*models.MasterSheet, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid master sheet query")
	}
	scope, err := s.scope(ctx, schoolID, q.TermID, q.SessionID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByClass(ctx, schoolID, q.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	rows, err := s.results.MasterSheetRows(ctx, scope, q.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load master sheet")
	}
	scores, err := s.results.MasterSheetScores(ctx, scope, q.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load master sheet scores")
	}

	byStudent := make(map[string]map[string]int, len(rows))
	for _, sc := range scores {
		if byStudent[sc.StudentID] == nil {
			byStudent[sc.StudentID] = make(map[string]int)
		}
		byStudent[sc.StudentID][sc.SubjectID] = sc.TotalScore
	}
	for i := range rows {
		rows[i].Scores = byStudent[rows[i].StudentID]
		if rows[i].Scores == nil {
			rows[i].Scores = map[string]int{}
		}
	}
	if rows == nil {
		rows = []models.MasterSheetRow{}
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return &models.MasterSheet{ClassID: q.ClassID, TermID: scope.TermID, SessionID: scope.SessionID, Subjects: subjects, Rows: rows}, nil
}

// AssessmentStatus reports whether every score of a class subject has been entered.
func (s *ResultSheetService) AssessmentStatus(ctx context.Context, schoolID string, q AssessmentStatusQuery) (*models.AssessmentStatus, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment status query")
	}
	scope, err := s.scope(ctx, schoolID, q.TermID, q.SessionID)
	if err != nil {
		return nil, err
	}
	pending, err := s.results.CountPendingScores(ctx, models.AssessmentStatusFilter{
		SchoolID:  schoolID,
		ClassID:   q.ClassID,
		SubjectID: q.SubjectID,
		TermID:    scope.TermID,
		SessionID: scope.SessionID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assessment scores")
	}
	if pending > 0 {
		return &models.AssessmentStatus{Complete: false, Pending: pending, Message: fmt.Sprintf("%d assessment score(s) not entered", pending)}, nil
	}
	return &models.AssessmentStatus{Complete: true, Message: "all assessment scores entered"}, nil
}

func (s *ResultSheetService) scope(ctx context.Context, schoolID, termID, sessionID string) (models.ComputationScope, error) {
	scope := models.ComputationScope{SchoolID: schoolID, TermID: termID, SessionID: sessionID}
	if scope.TermID == "" {
		term, err := s.periods.FindCurrentTerm(ctx, schoolID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return scope, appErrors.Clone(appErrors.ErrConfiguration, "current term not set for the school")
			}
			return scope, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current term")
		}
		scope.TermID = term.ID
	}
	if scope.SessionID == "" {
		session, err := s.periods.FindCurrentSession(ctx, schoolID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return scope, appErrors.Clone(appErrors.ErrConfiguration, "current session not set for the school")
			}
			return scope, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current session")
		}
		scope.SessionID = session.ID
	}
	return scope, nil
}

// PositionLabel renders a position with its English ordinal suffix, e.g. 1st, 22nd, 13th.
func PositionLabel(position int) string {
	suffix := "th"
	switch position % 100 {
	case 11, 12, 13:
	default:
		switch position % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", position, suffix)
}

const outOfRangeRemark = "Your Scores are not within the stipulated range. Form teacher please make corrections"

var principalRemarks = []struct {
	min    float64
	remark string
}{
	{80, "Wonderful performance. Keep it up."},
	{70, "An Amazing Result. Keep it up"},
	{60, "Good Result. You can do more"},
	{50, "Satisfactory Result. You can do better."},
	{40, "Average Result, Work harder"},
	{0, "Poor performance. Do better next time."},
}

const maxAverage = 100

// PrincipalRemark maps an average to the remark printed on the result sheet. Averages outside
// 0..100 get the out-of-range remark.
func PrincipalRemark(average float64) string {
	if average > maxAverage {
		return outOfRangeRemark
	}
	for _, band := range principalRemarks {
		if average >= band.min {
			return band.remark
		}
	}
	return outOfRangeRemark
}
