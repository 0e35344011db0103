// Package memdb is an in-memory implementation of the result repositories.
// It backs the simulate command and end-to-end computation tests.
package memdb

import (
	"sort"
	"sync"

	"github.com/noah-isme/school-results-api/internal/models"
)

// DB holds every table behind a single lock so a computation write-back is atomic across tables.
type DB struct {
	mutex sync.RWMutex

	terms       []models.Term
	sessions    []models.AcademicSession
	classes     []models.Class
	students    []models.Student
	subjects    []models.Subject
	enrollments []models.Enrollment
	assessments []models.Assessment
	gradeRules  []models.GradeRule
	results     []models.Result
	scores      []models.AssessmentScore
	releases    []models.ResultRelease
	runs        []models.ComputationRun

	commits int
}

// Open returns an empty database.
func Open() *DB {
	return &DB{}
}

// Results returns a copy of the results table ordered by composite key.
func (db *DB) Results() []models.Result {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	out := append([]models.Result(nil), db.results...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.StudentID < b.StudentID
	})
	return out
}

// Enrollments returns a copy of the enrollments table.
func (db *DB) Enrollments() []models.Enrollment {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return append([]models.Enrollment(nil), db.enrollments...)
}

// Subjects returns a copy of the subjects table.
func (db *DB) Subjects() []models.Subject {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return append([]models.Subject(nil), db.subjects...)
}

// Commits reports how many computation write-backs were committed.
func (db *DB) Commits() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.commits
}

// InsertTerm and the other Insert methods add fixture rows without validation.
func (db *DB) InsertTerm(term models.Term) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.terms = append(db.terms, term)
}

func (db *DB) InsertSession(session models.AcademicSession) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.sessions = append(db.sessions, session)
}

func (db *DB) InsertClass(class models.Class) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.classes = append(db.classes, class)
}

func (db *DB) InsertStudent(student models.Student) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.students = append(db.students, student)
}

func (db *DB) InsertSubject(subject models.Subject) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.subjects = append(db.subjects, subject)
}

func (db *DB) InsertEnrollment(enrollment models.Enrollment) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.enrollments = append(db.enrollments, enrollment)
}

func (db *DB) InsertAssessment(assessment models.Assessment) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.assessments = append(db.assessments, assessment)
}

func (db *DB) InsertGradeRule(rule models.GradeRule) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.gradeRules = append(db.gradeRules, rule)
}

func (db *DB) InsertResult(result models.Result) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.results = append(db.results, result)
}

func (db *DB) InsertScore(score models.AssessmentScore) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.scores = append(db.scores, score)
}
