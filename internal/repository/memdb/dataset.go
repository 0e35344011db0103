package memdb

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/school-results-api/internal/models"
)

// Dataset is a self-contained school fixture, usually read from YAML.
type Dataset struct {
	SchoolID    string              `yaml:"school_id"`
	Term        DatasetPeriod       `yaml:"term"`
	Session     DatasetPeriod       `yaml:"session"`
	Assessments []DatasetAssessment `yaml:"assessments"`
	GradeRules  []DatasetGradeRule  `yaml:"grade_rules"`
	Classes     []DatasetClass      `yaml:"classes"`
}

type DatasetPeriod struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type DatasetAssessment struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	MaxScore int    `yaml:"max_score"`
}

type DatasetGradeRule struct {
	MinScore float64 `yaml:"min_score"`
	MaxScore float64 `yaml:"max_score"`
	Grade    string  `yaml:"grade"`
	Comment  string  `yaml:"comment"`
}

type DatasetClass struct {
	ID       string           `yaml:"id"`
	Name     string           `yaml:"name"`
	Subjects []DatasetSubject `yaml:"subjects"`
	Students []DatasetStudent `yaml:"students"`
}

type DatasetSubject struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatasetStudent lists scores as subject ID -> assessment ID -> score.
type DatasetStudent struct {
	ID     string                    `yaml:"id"`
	Name   string                    `yaml:"name"`
	Scores map[string]map[string]int `yaml:"scores"`
}

// DecodeDataset parses a YAML dataset.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if ds.SchoolID == "" {
		return nil, fmt.Errorf("decode dataset: school_id is required")
	}
	return &ds, nil
}

// Seed loads the dataset into db. Term and session become current; an empty ID leaves them unset.
// Students are enrolled in listed order, which is also the ranking tie-break order.
func (db *DB) Seed(ds *Dataset) {
	if ds.Term.ID != "" {
		db.InsertTerm(models.Term{ID: ds.Term.ID, SchoolID: ds.SchoolID, Name: ds.Term.Name, IsCurrent: true})
	}
	if ds.Session.ID != "" {
		db.InsertSession(models.AcademicSession{ID: ds.Session.ID, SchoolID: ds.SchoolID, Name: ds.Session.Name, IsCurrent: true})
	}
	for _, a := range ds.Assessments {
		db.InsertAssessment(models.Assessment{ID: a.ID, SchoolID: ds.SchoolID, Name: a.Name, MaxScore: a.MaxScore})
	}
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, g := range ds.GradeRules {
		db.InsertGradeRule(models.GradeRule{
			ID:        fmt.Sprintf("rule-%d", i+1),
			SchoolID:  ds.SchoolID,
			MinScore:  g.MinScore,
			MaxScore:  g.MaxScore,
			Grade:     g.Grade,
			Comment:   g.Comment,
			CreatedAt: created.Add(time.Duration(i) * time.Second),
		})
	}

	seq := 0
	for _, c := range ds.Classes {
		db.InsertClass(models.Class{ID: c.ID, SchoolID: ds.SchoolID, Name: c.Name, CreatedAt: created})
		for _, s := range c.Subjects {
			termID := ds.Term.ID
			db.InsertSubject(models.Subject{ID: s.ID, SchoolID: ds.SchoolID, ClassID: c.ID, TermID: &termID, Name: s.Name})
		}
		for _, st := range c.Students {
			seq++
			db.InsertStudent(models.Student{ID: st.ID, SchoolID: ds.SchoolID, FullName: st.Name})
			db.InsertEnrollment(models.Enrollment{
				ID:         fmt.Sprintf("enr-%s-%s", c.ID, st.ID),
				StudentID:  st.ID,
				SchoolID:   ds.SchoolID,
				ClassID:    c.ID,
				TermID:     ds.Term.ID,
				SessionID:  ds.Session.ID,
				EnrolledAt: created.Add(time.Duration(seq) * time.Minute),
			})
			for _, subject := range c.Subjects {
				scores, ok := st.Scores[subject.ID]
				if !ok {
					continue
				}
				resultID := fmt.Sprintf("res-%s-%s-%s", c.ID, st.ID, subject.ID)
				db.InsertResult(models.Result{
					ID:         resultID,
					SchoolID:   ds.SchoolID,
					StudentID:  st.ID,
					SubjectID:  subject.ID,
					ClassID:    c.ID,
					TermID:     ds.Term.ID,
					SessionID:  ds.Session.ID,
					TotalScore: models.ScoreNotEntered,
					Grade:      models.GradeNotAvailable,
				})
				assessmentIDs := make([]string, 0, len(scores))
				for id := range scores {
					assessmentIDs = append(assessmentIDs, id)
				}
				sort.Strings(assessmentIDs)
				for _, assessmentID := range assessmentIDs {
					db.InsertScore(models.AssessmentScore{
						ID:           resultID + "-" + assessmentID,
						ResultID:     resultID,
						AssessmentID: assessmentID,
						Score:        scores[assessmentID],
					})
				}
			}
		}
	}
}
