package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-results-api/internal/models"
)

func standardRules() []models.GradeRule {
	return []models.GradeRule{
		{ID: "r1", MinScore: 70, MaxScore: 100, Grade: "A", Comment: "Excellent"},
		{ID: "r2", MinScore: 60, MaxScore: 69, Grade: "B", Comment: "Very good"},
		{ID: "r3", MinScore: 50, MaxScore: 59, Grade: "C", Comment: "Credit"},
		{ID: "r4", MinScore: 0, MaxScore: 49, Grade: "F", Comment: "Fail"},
	}
}

func TestDetermineGradeBoundariesAreInclusive(t *testing.T) {
	rules := standardRules()

	assert.Equal(t, models.GradeOutcome{Grade: "A", Comment: "Excellent"}, DetermineGrade(70, rules))
	assert.Equal(t, models.GradeOutcome{Grade: "A", Comment: "Excellent"}, DetermineGrade(100, rules))
	assert.Equal(t, models.GradeOutcome{Grade: "B", Comment: "Very good"}, DetermineGrade(69, rules))
	assert.Equal(t, models.GradeOutcome{Grade: "F", Comment: "Fail"}, DetermineGrade(0, rules))
}

func TestDetermineGradeFirstMatchWinsOnOverlap(t *testing.T) {
	rules := []models.GradeRule{
		{MinScore: 50, MaxScore: 80, Grade: "B", Comment: "first"},
		{MinScore: 60, MaxScore: 100, Grade: "A", Comment: "second"},
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, "B", DetermineGrade(75, rules).Grade)
	}
	assert.Equal(t, "A", DetermineGrade(81, rules).Grade)
}

func TestDetermineGradeNoMatch(t *testing.T) {
	outcome := DetermineGrade(120, standardRules())
	assert.Equal(t, models.GradeNotAvailable, outcome.Grade)
	assert.Equal(t, models.CommentOutOfRange, outcome.Comment)

	assert.Equal(t, models.GradeNotAvailable, DetermineGrade(49.5, standardRules()).Grade)
	assert.Equal(t, models.GradeNotAvailable, DetermineGrade(10, nil).Grade)
}
