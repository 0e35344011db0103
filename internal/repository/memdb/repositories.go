package memdb

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/school-results-api/internal/models"
)

// ClassRepository is the in-memory counterpart of the Postgres repository.ClassRepository.
type ClassRepository struct{ db *DB }

// NewClassRepository returns a class repository backed by db.
func NewClassRepository(db *DB) *ClassRepository { return &ClassRepository{db: db} }

// ListBySchool returns the school's classes in insertion order.
func (r *ClassRepository) ListBySchool(_ context.Context, schoolID string) ([]models.Class, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var classes []models.Class
	for _, c := range r.db.classes {
		if c.SchoolID == schoolID {
			classes = append(classes, c)
		}
	}
	return classes, nil
}

// FindByID returns one class of the school or sql.ErrNoRows.
func (r *ClassRepository) FindByID(_ context.Context, schoolID, id string) (*models.Class, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, c := range r.db.classes {
		if c.SchoolID == schoolID && c.ID == id {
			class := c
			return &class, nil
		}
	}
	return nil, sql.ErrNoRows
}

// TermRepository is the in-memory counterpart of the Postgres repository.TermRepository.
type TermRepository struct{ db *DB }

// NewTermRepository returns a term repository backed by db.
func NewTermRepository(db *DB) *TermRepository { return &TermRepository{db: db} }

// FindCurrentTerm returns the term flagged current or sql.ErrNoRows.
func (r *TermRepository) FindCurrentTerm(_ context.Context, schoolID string) (*models.Term, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, t := range r.db.terms {
		if t.SchoolID == schoolID && t.IsCurrent {
			term := t
			return &term, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindCurrentSession returns the session flagged current or sql.ErrNoRows.
func (r *TermRepository) FindCurrentSession(_ context.Context, schoolID string) (*models.AcademicSession, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, s := range r.db.sessions {
		if s.SchoolID == schoolID && s.IsCurrent {
			session := s
			return &session, nil
		}
	}
	return nil, sql.ErrNoRows
}

// EnrollmentRepository is the in-memory counterpart of the Postgres repository.EnrollmentRepository.
type EnrollmentRepository struct{ db *DB }

// NewEnrollmentRepository returns an enrollment repository backed by db.
func NewEnrollmentRepository(db *DB) *EnrollmentRepository { return &EnrollmentRepository{db: db} }

func inScope(e models.Enrollment, scope models.ComputationScope, classID string) bool {
	return e.SchoolID == scope.SchoolID && e.ClassID == classID && e.TermID == scope.TermID && e.SessionID == scope.SessionID
}

// ListForComputation mirrors the SQL ordering: enrolled_at, then id.
func (r *EnrollmentRepository) ListForComputation(_ context.Context, scope models.ComputationScope, classID string) ([]models.Enrollment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var enrollments []models.Enrollment
	for _, e := range r.db.enrollments {
		if inScope(e, scope, classID) {
			enrollments = append(enrollments, e)
		}
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		if !enrollments[i].EnrolledAt.Equal(enrollments[j].EnrolledAt) {
			return enrollments[i].EnrolledAt.Before(enrollments[j].EnrolledAt)
		}
		return enrollments[i].ID < enrollments[j].ID
	})
	return enrollments, nil
}

// FindForStudent returns the student's enrollment in the class or sql.ErrNoRows.
func (r *EnrollmentRepository) FindForStudent(_ context.Context, scope models.ComputationScope, classID, studentID string) (*models.Enrollment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, e := range r.db.enrollments {
		if inScope(e, scope, classID) && e.StudentID == studentID {
			enrollment := e
			return &enrollment, nil
		}
	}
	return nil, sql.ErrNoRows
}

// CountInClass returns the number of enrollments of the class in scope.
func (r *EnrollmentRepository) CountInClass(_ context.Context, scope models.ComputationScope, classID string) (int, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	total := 0
	for _, e := range r.db.enrollments {
		if inScope(e, scope, classID) {
			total++
		}
	}
	return total, nil
}

// SubjectRepository is the in-memory counterpart of the Postgres repository.SubjectRepository.
type SubjectRepository struct{ db *DB }

// NewSubjectRepository returns a subject repository backed by db.
func NewSubjectRepository(db *DB) *SubjectRepository { return &SubjectRepository{db: db} }

// ListByClass returns the class subjects ordered by name, then ID.
func (r *SubjectRepository) ListByClass(_ context.Context, schoolID, classID string) ([]models.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var subjects []models.Subject
	for _, s := range r.db.subjects {
		if s.SchoolID == schoolID && s.ClassID == classID {
			subjects = append(subjects, s)
		}
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].ID < subjects[j].ID
	})
	return subjects, nil
}

// AssessmentRepository is the in-memory counterpart of the Postgres repository.AssessmentRepository.
type AssessmentRepository struct{ db *DB }

// NewAssessmentRepository returns an assessment repository backed by db.
func NewAssessmentRepository(db *DB) *AssessmentRepository { return &AssessmentRepository{db: db} }

// ListBySchool returns the school's assessments in insertion order.
func (r *AssessmentRepository) ListBySchool(_ context.Context, schoolID string) ([]models.Assessment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var assessments []models.Assessment
	for _, a := range r.db.assessments {
		if a.SchoolID == schoolID {
			assessments = append(assessments, a)
		}
	}
	return assessments, nil
}

// GradeRuleRepository is the in-memory counterpart of the Postgres repository.GradeRuleRepository.
type GradeRuleRepository struct{ db *DB }

// NewGradeRuleRepository returns a grade rule repository backed by db.
func NewGradeRuleRepository(db *DB) *GradeRuleRepository { return &GradeRuleRepository{db: db} }

// ListBySchool keeps insertion order, the in-memory equivalent of stored order.
func (r *GradeRuleRepository) ListBySchool(_ context.Context, schoolID string) ([]models.GradeRule, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var rules []models.GradeRule
	for _, g := range r.db.gradeRules {
		if g.SchoolID == schoolID {
			rules = append(rules, g)
		}
	}
	return rules, nil
}

// ResultRepository is the in-memory counterpart of the Postgres repository.ResultRepository.
type ResultRepository struct{ db *DB }

// NewResultRepository returns a result repository backed by db.
func NewResultRepository(db *DB) *ResultRepository { return &ResultRepository{db: db} }

func (r *ResultRepository) resultInScope(res models.Result, scope models.ComputationScope, classID string) bool {
	return res.SchoolID == scope.SchoolID && res.ClassID == classID && res.TermID == scope.TermID && res.SessionID == scope.SessionID
}

// ListScoresForClass returns every assessment score recorded on the class results in scope.
func (r *ResultRepository) ListScoresForClass(_ context.Context, scope models.ComputationScope, classID string) ([]models.ResultScore, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	byID := make(map[string]models.Result)
	for _, res := range r.db.results {
		if r.resultInScope(res, scope, classID) {
			byID[res.ID] = res
		}
	}
	var scores []models.ResultScore
	for _, s := range r.db.scores {
		res, ok := byID[s.ResultID]
		if !ok {
			continue
		}
		scores = append(scores, models.ResultScore{
			ResultID:     res.ID,
			StudentID:    res.StudentID,
			SubjectID:    res.SubjectID,
			AssessmentID: s.AssessmentID,
			Score:        s.Score,
		})
	}
	return scores, nil
}

// ApplyComputation stages every change on copies and swaps them in only when all succeed.
func (r *ResultRepository) ApplyComputation(ctx context.Context, batch models.ComputationBatch) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	results := append([]models.Result(nil), r.db.results...)
	subjects := append([]models.Subject(nil), r.db.subjects...)
	enrollments := append([]models.Enrollment(nil), r.db.enrollments...)

	index := make(map[models.ResultKey]int, len(results))
	for i, res := range results {
		index[res.Key()] = i
	}
	now := time.Now().UTC()
	for _, res := range batch.Results {
		res.UpdatedAt = now
		if i, ok := index[res.Key()]; ok {
			res.ID = results[i].ID
			results[i] = res
			continue
		}
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		index[res.Key()] = len(results)
		results = append(results, res)
	}

	for _, avg := range batch.Subjects {
		found := false
		for i := range subjects {
			if subjects[i].ID == avg.SubjectID && subjects[i].SchoolID == batch.Scope.SchoolID {
				value := avg.Average
				subjects[i].Average = &value
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("update subject average: subject %s not found", avg.SubjectID)
		}
		for i := range results {
			res := &results[i]
			if res.SchoolID != batch.Scope.SchoolID || res.SubjectID != avg.SubjectID || res.ClassID != avg.ClassID ||
				res.TermID != batch.Scope.TermID || res.SessionID != batch.Scope.SessionID {
				continue
			}
			highest, lowest := avg.Highest, avg.Lowest
			res.HighestScore, res.LowestScore, res.UpdatedAt = &highest, &lowest, now
		}
	}

	for _, standing := range batch.Enrollments {
		found := false
		for i := range enrollments {
			if enrollments[i].ID == standing.EnrollmentID && enrollments[i].SchoolID == batch.Scope.SchoolID {
				total, average, position := standing.Total, standing.Average, standing.Position
				enrollments[i].Total = &total
				enrollments[i].Average = &average
				enrollments[i].Position = &position
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("update enrollment standing: enrollment %s not found", standing.EnrollmentID)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("computation write-back cancelled: %w", err)
	}
	r.db.results, r.db.subjects, r.db.enrollments = results, subjects, enrollments
	r.db.commits++
	return nil
}

// SubjectLines returns a student's result rows with subject context.
func (r *ResultRepository) SubjectLines(_ context.Context, scope models.ComputationScope, classID, studentID string) ([]models.SubjectResultLine, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	subjects := make(map[string]models.Subject, len(r.db.subjects))
	for _, s := range r.db.subjects {
		subjects[s.ID] = s
	}
	var lines []models.SubjectResultLine
	for _, res := range r.db.results {
		if !r.resultInScope(res, scope, classID) || res.StudentID != studentID {
			continue
		}
		subject := subjects[res.SubjectID]
		lines = append(lines, models.SubjectResultLine{
			ResultID:       res.ID,
			SubjectID:      res.SubjectID,
			SubjectName:    subject.Name,
			TotalScore:     res.TotalScore,
			Grade:          res.Grade,
			Comment:        res.Comment,
			Position:       res.Position,
			HighestScore:   res.HighestScore,
			LowestScore:    res.LowestScore,
			SubjectAverage: subject.Average,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].SubjectName < lines[j].SubjectName })
	return lines, nil
}

// AssessmentLines returns the per-assessment scores of the given results keyed by result ID.
func (r *ResultRepository) AssessmentLines(_ context.Context, resultIDs []string) (map[string][]models.AssessmentScoreLine, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	wanted := make(map[string]struct{}, len(resultIDs))
	for _, id := range resultIDs {
		wanted[id] = struct{}{}
	}
	assessments := make(map[string]models.Assessment, len(r.db.assessments))
	for _, a := range r.db.assessments {
		assessments[a.ID] = a
	}
	lines := make(map[string][]models.AssessmentScoreLine, len(resultIDs))
	for _, s := range r.db.scores {
		if _, ok := wanted[s.ResultID]; !ok {
			continue
		}
		a := assessments[s.AssessmentID]
		lines[s.ResultID] = append(lines[s.ResultID], models.AssessmentScoreLine{
			AssessmentID:   s.AssessmentID,
			AssessmentName: a.Name,
			MaxScore:       a.MaxScore,
			Score:          s.Score,
		})
	}
	return lines, nil
}

// MasterSheetRows returns the class enrollments ordered by position.
func (r *ResultRepository) MasterSheetRows(_ context.Context, scope models.ComputationScope, classID string) ([]models.MasterSheetRow, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	names := make(map[string]string, len(r.db.students))
	for _, s := range r.db.students {
		names[s.ID] = s.FullName
	}
	var enrollments []models.Enrollment
	for _, e := range r.db.enrollments {
		if inScope(e, scope, classID) {
			enrollments = append(enrollments, e)
		}
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		pi, pj := enrollments[i].Position, enrollments[j].Position
		switch {
		case pi != nil && pj != nil && *pi != *pj:
			return *pi < *pj
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return enrollments[i].EnrolledAt.Before(enrollments[j].EnrolledAt)
	})
	rows := make([]models.MasterSheetRow, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, models.MasterSheetRow{
			EnrollmentID: e.ID,
			StudentID:    e.StudentID,
			StudentName:  names[e.StudentID],
			Total:        e.Total,
			Average:      e.Average,
			Position:     e.Position,
		})
	}
	return rows, nil
}

// MasterSheetScores returns every subject total of the class in scope.
func (r *ResultRepository) MasterSheetScores(_ context.Context, scope models.ComputationScope, classID string) ([]models.MasterSheetScore, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var scores []models.MasterSheetScore
	for _, res := range r.db.results {
		if r.resultInScope(res, scope, classID) {
			scores = append(scores, models.MasterSheetScore{StudentID: res.StudentID, SubjectID: res.SubjectID, TotalScore: res.TotalScore})
		}
	}
	return scores, nil
}

// CountPendingScores counts scores still holding the not-entered sentinel.
func (r *ResultRepository) CountPendingScores(_ context.Context, filter models.AssessmentStatusFilter) (int, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	scope := models.ComputationScope{SchoolID: filter.SchoolID, TermID: filter.TermID, SessionID: filter.SessionID}
	ids := make(map[string]struct{})
	for _, res := range r.db.results {
		if r.resultInScope(res, scope, filter.ClassID) && res.SubjectID == filter.SubjectID {
			ids[res.ID] = struct{}{}
		}
	}
	pending := 0
	for _, s := range r.db.scores {
		if _, ok := ids[s.ResultID]; ok && s.Score == models.ScoreNotEntered {
			pending++
		}
	}
	return pending, nil
}

// ReleaseRepository is the in-memory counterpart of the Postgres repository.ReleaseRepository.
type ReleaseRepository struct{ db *DB }

// NewReleaseRepository returns a release repository backed by db.
func NewReleaseRepository(db *DB) *ReleaseRepository { return &ReleaseRepository{db: db} }

// ListBySchool returns the school's releases, newest first.
func (r *ReleaseRepository) ListBySchool(_ context.Context, schoolID string) ([]models.ResultRelease, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var releases []models.ResultRelease
	for i := len(r.db.releases) - 1; i >= 0; i-- {
		if r.db.releases[i].SchoolID == schoolID {
			releases = append(releases, r.db.releases[i])
		}
	}
	return releases, nil
}

// FindByID returns one release of the school or sql.ErrNoRows.
func (r *ReleaseRepository) FindByID(_ context.Context, schoolID, id string) (*models.ResultRelease, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, rel := range r.db.releases {
		if rel.SchoolID == schoolID && rel.ID == id {
			release := rel
			return &release, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByPeriod returns the release of a term and session or sql.ErrNoRows.
func (r *ReleaseRepository) FindByPeriod(_ context.Context, schoolID, termID, sessionID string) (*models.ResultRelease, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, rel := range r.db.releases {
		if rel.SchoolID == schoolID && rel.TermID == termID && rel.SessionID == sessionID {
			release := rel
			return &release, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create stores a new release and assigns its ID.
func (r *ReleaseRepository) Create(_ context.Context, release *models.ResultRelease) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	for _, rel := range r.db.releases {
		if rel.SchoolID == release.SchoolID && rel.TermID == release.TermID && rel.SessionID == release.SessionID {
			return fmt.Errorf("create release: duplicate period %s/%s", release.TermID, release.SessionID)
		}
	}
	if release.ID == "" {
		release.ID = uuid.NewString()
	}
	if release.CreatedAt.IsZero() {
		release.CreatedAt = time.Now().UTC()
	}
	r.db.releases = append(r.db.releases, *release)
	return nil
}

// SetPublished flips the published flag of a release.
func (r *ReleaseRepository) SetPublished(_ context.Context, schoolID, id string, published bool, releaseDate *time.Time) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	for i := range r.db.releases {
		if r.db.releases[i].SchoolID == schoolID && r.db.releases[i].ID == id {
			r.db.releases[i].IsPublished = published
			r.db.releases[i].ReleaseDate = releaseDate
			return nil
		}
	}
	return sql.ErrNoRows
}

// ComputationRunRepository is the in-memory counterpart of the Postgres repository.ComputationRunRepository.
type ComputationRunRepository struct{ db *DB }

// NewComputationRunRepository returns a run repository backed by db.
func NewComputationRunRepository(db *DB) *ComputationRunRepository {
	return &ComputationRunRepository{db: db}
}

// Create records a new computation run.
func (r *ComputationRunRepository) Create(_ context.Context, run *models.ComputationRun) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	r.db.runs = append(r.db.runs, *run)
	return nil
}

// Update overwrites a recorded run or returns sql.ErrNoRows.
func (r *ComputationRunRepository) Update(_ context.Context, run *models.ComputationRun) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	for i := range r.db.runs {
		if r.db.runs[i].ID == run.ID {
			r.db.runs[i] = *run
			return nil
		}
	}
	return sql.ErrNoRows
}

// FindByID returns one run of the school or sql.ErrNoRows.
func (r *ComputationRunRepository) FindByID(_ context.Context, schoolID, id string) (*models.ComputationRun, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, run := range r.db.runs {
		if run.SchoolID == schoolID && run.ID == id {
			found := run
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}
