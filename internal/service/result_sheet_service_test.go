package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/repository/memdb"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

func computedSchool(t *testing.T, ds *memdb.Dataset) (*memdb.DB, *ResultSheetService, *ReleaseService) {
	t.Helper()
	db := seeded(ds)
	_, err := newComputationService(db, nil, nil).Compute(context.Background(), testSchool)
	require.NoError(t, err)
	releases := newReleaseService(db)
	sheets := NewResultSheetService(
		memdb.NewResultRepository(db),
		memdb.NewEnrollmentRepository(db),
		memdb.NewSubjectRepository(db),
		memdb.NewTermRepository(db),
		releases,
		nil,
		nil,
	)
	return db, sheets, releases
}

func TestPositionLabel(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 101: "101st", 111: "111th"}
	for position, want := range cases {
		assert.Equal(t, want, PositionLabel(position))
	}
}

func TestPrincipalRemark(t *testing.T) {
	assert.Equal(t, "Wonderful performance. Keep it up.", PrincipalRemark(80))
	assert.Equal(t, "An Amazing Result. Keep it up", PrincipalRemark(77.5))
	assert.Equal(t, "Good Result. You can do more", PrincipalRemark(60))
	assert.Equal(t, "Satisfactory Result. You can do better.", PrincipalRemark(59.99))
	assert.Equal(t, "Average Result, Work harder", PrincipalRemark(40))
	assert.Equal(t, "Poor performance. Do better next time.", PrincipalRemark(0))
	assert.Contains(t, PrincipalRemark(-1), "not within the stipulated range")
	assert.Equal(t, "Wonderful performance. Keep it up.", PrincipalRemark(100))
	assert.Contains(t, PrincipalRemark(100.5), "not within the stipulated range")
}

func TestStudentSheetForTeacher(t *testing.T) {
	_, sheets, _ := computedSchool(t, threeStudentDataset())
	viewer := &models.JWTClaims{SchoolID: testSchool, Role: models.RoleTeacher}

	sheet, err := sheets.StudentSheet(context.Background(), viewer, StudentSheetQuery{StudentID: "A", ClassID: "class-1"})
	require.NoError(t, err)

	assert.Equal(t, "term-1", sheet.TermID)
	assert.Equal(t, 3, sheet.ClassSize)
	assert.Equal(t, 77.5, *sheet.Average)
	assert.Equal(t, "1st", sheet.PositionLabel)
	assert.Equal(t, "An Amazing Result. Keep it up", sheet.PrincipalRemark)
	require.Len(t, sheet.Subjects, 2)
	english := sheet.Subjects[0]
	assert.Equal(t, "English", english.SubjectName)
	assert.Equal(t, 85, english.TotalScore)
	assert.Equal(t, "2nd", english.PositionLabel)
	assert.Equal(t, 78.33, *english.SubjectAverage)
	assert.Len(t, english.Assessments, 2)
}

func TestStudentSheetGatedForStudents(t *testing.T) {
	_, sheets, releases := computedSchool(t, threeStudentDataset())
	ctx := context.Background()
	student := &models.JWTClaims{SchoolID: testSchool, Role: models.RoleStudent, StudentID: "B"}
	query := StudentSheetQuery{StudentID: "B", ClassID: "class-1"}

	_, err := sheets.StudentSheet(ctx, student, query)
	assert.Equal(t, appErrors.ErrNotReleased.Code, appErrors.FromError(err).Code)

	_, err = sheets.StudentSheet(ctx, student, StudentSheetQuery{StudentID: "A", ClassID: "class-1"})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = releases.Create(ctx, testSchool, CreateReleaseRequest{TermID: "term-1", SessionID: "session-1", IsPublished: true})
	require.NoError(t, err)

	sheet, err := sheets.StudentSheet(ctx, student, query)
	require.NoError(t, err)
	assert.Equal(t, "3rd", sheet.PositionLabel)
}

func TestStudentSheetValidationAndMissingEnrollment(t *testing.T) {
	_, sheets, _ := computedSchool(t, threeStudentDataset())
	admin := &models.JWTClaims{SchoolID: testSchool, Role: models.RoleAdmin}

	_, err := sheets.StudentSheet(context.Background(), admin, StudentSheetQuery{StudentID: "A"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = sheets.StudentSheet(context.Background(), admin, StudentSheetQuery{StudentID: "nobody", ClassID: "class-1"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMasterSheetOrderedByPosition(t *testing.T) {
	_, sheets, _ := computedSchool(t, threeStudentDataset())

	sheet, err := sheets.MasterSheet(context.Background(), testSchool, MasterSheetQuery{ClassID: "class-1"})
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{sheet.Rows[0].StudentID, sheet.Rows[1].StudentID, sheet.Rows[2].StudentID})
	assert.Equal(t, "Chidi", sheet.Rows[1].StudentName)
	assert.Equal(t, map[string]int{"sub-1": 90, "sub-2": 40}, sheet.Rows[1].Scores)
	assert.Len(t, sheet.Subjects, 2)
}

func TestAssessmentStatus(t *testing.T) {
	ds := threeStudentDataset()
	ds.Classes[0].Students[2].Scores["sub-2"]["exam"] = models.ScoreNotEntered
	_, sheets, _ := computedSchool(t, ds)
	ctx := context.Background()

	status, err := sheets.AssessmentStatus(ctx, testSchool, AssessmentStatusQuery{ClassID: "class-1", SubjectID: "sub-2"})
	require.NoError(t, err)
	assert.False(t, status.Complete)
	assert.Equal(t, 1, status.Pending)

	status, err = sheets.AssessmentStatus(ctx, testSchool, AssessmentStatusQuery{ClassID: "class-1", SubjectID: "sub-1"})
	require.NoError(t, err)
	assert.True(t, status.Complete)
}
