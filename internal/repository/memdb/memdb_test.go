package memdb

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
)

const sampleDataset = `
school_id: school-1
term: {id: term-1, name: First Term}
session: {id: session-1, name: 2024/2025}
assessments:
  - {id: ca, name: CA, max_score: 40}
  - {id: exam, name: Exam, max_score: 60}
grade_rules:
  - {min_score: 0, max_score: 100, grade: P, comment: Pass}
classes:
  - id: class-1
    name: JSS 1
    subjects:
      - {id: sub-1, name: English}
    students:
      - id: stu-1
        name: Ada
        scores:
          sub-1: {ca: 30, exam: 50}
      - id: stu-2
        name: Bola
`

func TestDecodeDatasetAndSeed(t *testing.T) {
	ds, err := DecodeDataset(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	require.Len(t, ds.Classes, 1)
	assert.Equal(t, 40, ds.Assessments[0].MaxScore)

	db := Open()
	db.Seed(ds)
	ctx := context.Background()

	term, err := NewTermRepository(db).FindCurrentTerm(ctx, "school-1")
	require.NoError(t, err)
	assert.Equal(t, "term-1", term.ID)

	scope := models.ComputationScope{SchoolID: "school-1", TermID: "term-1", SessionID: "session-1"}
	enrollments, err := NewEnrollmentRepository(db).ListForComputation(ctx, scope, "class-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, "stu-1", enrollments[0].StudentID)
	assert.True(t, enrollments[0].EnrolledAt.Before(enrollments[1].EnrolledAt))

	results := db.Results()
	require.Len(t, results, 1)
	assert.Equal(t, -1, results[0].TotalScore)

	scores, err := NewResultRepository(db).ListScoresForClass(ctx, scope, "class-1")
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestDecodeDatasetRejectsUnknownFieldsAndMissingSchool(t *testing.T) {
	_, err := DecodeDataset(strings.NewReader("school_id: s\nunknown: 1\n"))
	assert.Error(t, err)

	_, err = DecodeDataset(strings.NewReader("term: {id: t}\n"))
	assert.Error(t, err)
}

func TestApplyComputationIsAllOrNothing(t *testing.T) {
	ds, err := DecodeDataset(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	db := Open()
	db.Seed(ds)
	repo := NewResultRepository(db)
	scope := models.ComputationScope{SchoolID: "school-1", TermID: "term-1", SessionID: "session-1"}

	batch := models.ComputationBatch{
		Scope: scope,
		Results: []models.Result{
			{SchoolID: "school-1", StudentID: "stu-1", SubjectID: "sub-1", ClassID: "class-1", TermID: "term-1", SessionID: "session-1", TotalScore: 80, Grade: "P"},
		},
		Enrollments: []models.EnrollmentStanding{{EnrollmentID: "enr-missing", Total: 80, Average: 80, Position: 1}},
	}
	require.Error(t, repo.ApplyComputation(context.Background(), batch))
	assert.Equal(t, -1, db.Results()[0].TotalScore)
	assert.Zero(t, db.Commits())

	batch.Enrollments = []models.EnrollmentStanding{{EnrollmentID: "enr-class-1-stu-1", Total: 80, Average: 80, Position: 1}}
	require.NoError(t, repo.ApplyComputation(context.Background(), batch))
	results := db.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "res-class-1-stu-1-sub-1", results[0].ID)
	assert.Equal(t, 80, results[0].TotalScore)
	assert.Equal(t, 1, db.Commits())
}
