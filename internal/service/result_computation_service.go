package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/logger"
)

type periodResolver interface {
	FindCurrentTerm(ctx context.Context, schoolID string) (*models.Term, error)
	FindCurrentSession(ctx context.Context, schoolID string) (*models.AcademicSession, error)
}

type classLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Class, error)
}

type computationEnrollmentReader interface {
	ListForComputation(ctx context.Context, scope models.ComputationScope, classID string) ([]models.Enrollment, error)
}

type classSubjectLister interface {
	ListByClass(ctx context.Context, schoolID, classID string) ([]models.Subject, error)
}

type assessmentLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Assessment, error)
}

type gradeRuleLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.GradeRule, error)
}

type resultWriter interface {
	ListScoresForClass(ctx context.Context, scope models.ComputationScope, classID string) ([]models.ResultScore, error)
	ApplyComputation(ctx context.Context, batch models.ComputationBatch) error
}

// ComputationDeps groups the collaborators of ResultComputationService.
type ComputationDeps struct {
	Periods     periodResolver
	Classes     classLister
	Enrollments computationEnrollmentReader
	Subjects    classSubjectLister
	Assessments assessmentLister
	GradeRules  gradeRuleLister
	Results     resultWriter
	Guard       RunGuard
	Cache       *CacheService
	Metrics     *MetricsService
}

// ResultComputationService recomputes every result, subject average and class position of a
// school's current term and session.
type ResultComputationService struct {
	deps        ComputationDeps
	parallelism int
	logger      *zap.Logger
	now         func() time.Time
}

// NewResultComputationService builds the orchestrator. parallelism bounds how many classes
// are computed at once.
func NewResultComputationService(deps ComputationDeps, parallelism int, log *zap.Logger) *ResultComputationService {
	if parallelism <= 0 {
		parallelism = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Guard == nil {
		deps.Guard = NewLocalRunGuard(30 * time.Second)
	}
	return &ResultComputationService{
		deps:        deps,
		parallelism: parallelism,
		logger:      log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type computationPolicy struct {
	rules       []models.GradeRule
	assessments AssessmentSet
}

type classOutcome struct {
	results     []models.Result
	subjects    []models.SubjectAverage
	enrollments []models.EnrollmentStanding
	report      []models.ComputedEnrollment
}

// ResolveScope returns the current (school, term, session) triple or a configuration error.
func (s *ResultComputationService) ResolveScope(ctx context.Context, schoolID string) (models.ComputationScope, error) {
	scope := models.ComputationScope{SchoolID: schoolID}
	term, err := s.deps.Periods.FindCurrentTerm(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scope, appErrors.Clone(appErrors.ErrConfiguration, "current term not set for the school")
		}
		return scope, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current term")
	}
	session, err := s.deps.Periods.FindCurrentSession(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scope, appErrors.Clone(appErrors.ErrConfiguration, "current session not set for the school")
		}
		return scope, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current session")
	}
	scope.TermID = term.ID
	scope.SessionID = session.ID
	return scope, nil
}

// Compute runs a full computation for the school's current term and session. Nothing is
// written unless every class computes successfully.
func (s *ResultComputationService) Compute(ctx context.Context, schoolID string) (*models.ComputationReport, error) {
	return s.ComputeForRun(ctx, schoolID, "")
}

// ComputeForRun is Compute with the report, cached copy included, tagged with a recorded run ID.
func (s *ResultComputationService) ComputeForRun(ctx context.Context, schoolID, runID string) (*models.ComputationReport, error) {
	start := time.Now()
	s.deps.Metrics.RunStarted()
	report, err := s.compute(ctx, schoolID, runID)
	status := string(models.ComputationRunSucceeded)
	enrollments := 0
	if err != nil {
		status = string(models.ComputationRunFailed)
	} else {
		enrollments = len(report.Results)
	}
	s.deps.Metrics.RunFinished(status, enrollments, time.Since(start))
	return report, err
}

func (s *ResultComputationService) compute(ctx context.Context, schoolID, runID string) (*models.ComputationReport, error) {
	scope, err := s.ResolveScope(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	log := logger.Scoped(s.logger, scope.SchoolID, scope.TermID, scope.SessionID)

	ctx, release, err := s.deps.Guard.Acquire(ctx, scope)
	if err != nil {
		log.Warn("computation scope busy", zap.Error(err))
		return nil, err
	}
	defer release()

	policy, err := s.loadPolicy(ctx, schoolID)
	if err != nil {
		return nil, err
	}

	classes, err := s.deps.Classes.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	started := time.Now()
	log.Info("result computation started", zap.Int("classes", len(classes)))

	outcomes := make([]*classOutcome, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i := range classes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := s.computeClass(gctx, scope, classes[i], policy)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			log.Debug("class computed",
				zap.String("class_id", classes[i].ID),
				zap.Int("enrollments", len(outcome.enrollments)),
				zap.Int("results", len(outcome.results)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("result computation aborted", zap.Error(err))
		return nil, s.classifyRunError(err)
	}

	batch := models.ComputationBatch{Scope: scope}
	report := &models.ComputationReport{Scope: scope, ClassesProcessed: len(classes), Results: []models.ComputedEnrollment{}}
	for _, outcome := range outcomes {
		batch.Results = append(batch.Results, outcome.results...)
		batch.Subjects = append(batch.Subjects, outcome.subjects...)
		batch.Enrollments = append(batch.Enrollments, outcome.enrollments...)
		report.Results = append(report.Results, outcome.report...)
	}
	report.ResultsWritten = len(batch.Results)

	if err := ctx.Err(); err != nil {
		return nil, s.classifyRunError(err)
	}
	writeStart := time.Now()
	if err := s.deps.Results.ApplyComputation(ctx, batch); err != nil {
		log.Error("result write-back failed", zap.Error(err))
		return nil, s.classifyRunError(err)
	}
	s.deps.Metrics.ObserveDBQuery("apply_computation", time.Since(writeStart))

	report.RunID = runID
	report.ComputedAt = s.now()
	if err := s.deps.Cache.Set(ctx, reportCacheKey(scope), report, 0); err != nil {
		log.Warn("cache computation report failed", zap.Error(err))
	}

	log.Info("result computation finished",
		zap.Int("classes", len(classes)),
		zap.Int("enrollments", len(report.Results)),
		zap.Int("results", report.ResultsWritten),
		zap.Duration("duration", time.Since(started)))
	return report, nil
}

// LatestReport returns the cached report of the school's current scope.
func (s *ResultComputationService) LatestReport(ctx context.Context, schoolID string) (*models.ComputationReport, error) {
	scope, err := s.ResolveScope(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	var report models.ComputationReport
	hit, err := s.deps.Cache.Get(ctx, reportCacheKey(scope), &report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read computation report")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no computation report for the current term and session")
	}
	return &report, nil
}

func (s *ResultComputationService) loadPolicy(ctx context.Context, schoolID string) (computationPolicy, error) {
	rules, err := s.deps.GradeRules.ListBySchool(ctx, schoolID)
	if err != nil {
		return computationPolicy{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade rules")
	}
	if len(rules) == 0 {
		return computationPolicy{}, appErrors.Clone(appErrors.ErrConfiguration, "no grade rules defined for the school")
	}
	assessments, err := s.deps.Assessments.ListBySchool(ctx, schoolID)
	if err != nil {
		return computationPolicy{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessments")
	}
	set := NewAssessmentSet(assessments)
	if set.Len() == 0 {
		return computationPolicy{}, appErrors.Clone(appErrors.ErrConfiguration, "no assessments defined for the school")
	}
	return computationPolicy{rules: rules, assessments: set}, nil
}

func (s *ResultComputationService) computeClass(ctx context.Context, scope models.ComputationScope, class models.Class, policy computationPolicy) (*classOutcome, error) {
	enrollments, err := s.deps.Enrollments.ListForComputation(ctx, scope, class.ID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.deps.Subjects.ListByClass(ctx, scope.SchoolID, class.ID)
	if err != nil {
		return nil, err
	}
	outcome := &classOutcome{}
	if len(enrollments) == 0 || len(subjects) == 0 {
		return outcome, nil
	}

	scores, err := s.deps.Results.ListScoresForClass(ctx, scope, class.ID)
	if err != nil {
		return nil, err
	}
	scoresByKey := make(map[models.ResultKey][]models.AssessmentScore, len(scores))
	for _, sc := range scores {
		key := models.ResultKey{StudentID: sc.StudentID, SubjectID: sc.SubjectID, ClassID: class.ID, TermID: scope.TermID, SessionID: scope.SessionID}
		scoresByKey[key] = append(scoresByKey[key], models.AssessmentScore{ResultID: sc.ResultID, AssessmentID: sc.AssessmentID, Score: sc.Score})
	}

	trackers := make(map[string]*SubjectStatsTracker, len(subjects))
	for _, subject := range subjects {
		trackers[subject.ID] = NewSubjectStatsTracker()
	}
	resultIndex := make(map[models.ResultKey]int, len(enrollments)*len(subjects))
	classItems := make([]RankItem, 0, len(enrollments))
	totals := make(map[string]float64, len(enrollments))

	for _, enrollment := range enrollments {
		studentTotal := 0
		for _, subject := range subjects {
			key := models.ResultKey{StudentID: enrollment.StudentID, SubjectID: subject.ID, ClassID: class.ID, TermID: scope.TermID, SessionID: scope.SessionID}
			total, err := policy.assessments.Total(scoresByKey[key])
			if err != nil {
				return nil, err
			}
			grade := DetermineGrade(float64(total), policy.rules)
			resultIndex[key] = len(outcome.results)
			outcome.results = append(outcome.results, models.Result{
				ID:         uuid.NewString(),
				SchoolID:   scope.SchoolID,
				StudentID:  enrollment.StudentID,
				SubjectID:  subject.ID,
				ClassID:    class.ID,
				TermID:     scope.TermID,
				SessionID:  scope.SessionID,
				TotalScore: total,
				Grade:      grade.Grade,
				Comment:    grade.Comment,
			})
			trackers[subject.ID].Record(enrollment.StudentID, total)
			studentTotal += total
		}
		average := float64(studentTotal) / float64(len(subjects))
		totals[enrollment.ID] = float64(studentTotal)
		classItems = append(classItems, RankItem{ID: enrollment.ID, Score: average})
	}

	for _, subject := range subjects {
		stats := trackers[subject.ID].Finalize()
		for _, ranked := range stats.Ranked {
			key := models.ResultKey{StudentID: ranked.ID, SubjectID: subject.ID, ClassID: class.ID, TermID: scope.TermID, SessionID: scope.SessionID}
			result := &outcome.results[resultIndex[key]]
			position, highest, lowest := ranked.Position, stats.Highest, stats.Lowest
			result.Position = &position
			result.HighestScore = &highest
			result.LowestScore = &lowest
		}
		outcome.subjects = append(outcome.subjects, models.SubjectAverage{
			SubjectID: subject.ID,
			ClassID:   class.ID,
			Average:   roundScore(stats.Average),
			Highest:   stats.Highest,
			Lowest:    stats.Lowest,
		})
	}

	averages := make(map[string]float64, len(classItems))
	for _, item := range classItems {
		averages[item.ID] = item.Score
	}
	positions := make(map[string]int, len(classItems))
	for _, ranked := range Rank(classItems) {
		positions[ranked.ID] = ranked.Position
	}
	for _, enrollment := range enrollments {
		standing := models.EnrollmentStanding{
			EnrollmentID: enrollment.ID,
			Total:        totals[enrollment.ID],
			Average:      roundScore(averages[enrollment.ID]),
			Position:     positions[enrollment.ID],
		}
		outcome.enrollments = append(outcome.enrollments, standing)
		outcome.report = append(outcome.report, models.ComputedEnrollment{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
			ClassID:      class.ID,
			Total:        standing.Total,
			Average:      standing.Average,
			Position:     standing.Position,
		})
	}
	return outcome, nil
}

func (s *ResultComputationService) classifyRunError(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrRunInterrupted.Code, appErrors.ErrRunInterrupted.Status, appErrors.ErrRunInterrupted.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "result computation failed")
}

// roundScore rounds stored averages to two decimals. Ranking uses the unrounded value.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
