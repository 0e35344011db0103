package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

func scoreList(values ...int) []models.AssessmentScore {
	out := make([]models.AssessmentScore, len(values))
	for i, v := range values {
		out[i] = models.AssessmentScore{AssessmentID: string(rune('a' + i)), Score: v}
	}
	return out
}

func TestAggregateSubjectTotalClampsNegatives(t *testing.T) {
	assert.Equal(t, 0, AggregateSubjectTotal(nil))
	assert.Equal(t, 55, AggregateSubjectTotal(scoreList(30, 25)))
	assert.Equal(t, 30, AggregateSubjectTotal(scoreList(30, models.ScoreNotEntered)))
	assert.Equal(t, 30, AggregateSubjectTotal(scoreList(-7, 30, -1)))
	assert.Equal(t, 0, AggregateSubjectTotal(scoreList(-1, -1)))
}

func TestAssessmentSetTotalFiltersUnknownAssessments(t *testing.T) {
	set := NewAssessmentSet([]models.Assessment{{ID: "ca", MaxScore: 40}, {ID: "exam", MaxScore: 60}})

	total, err := set.Total([]models.AssessmentScore{
		{ResultID: "r1", AssessmentID: "ca", Score: 30},
		{ResultID: "r1", AssessmentID: "retired", Score: 99},
		{ResultID: "r1", AssessmentID: "exam", Score: models.ScoreNotEntered},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, total)
	assert.Equal(t, 2, set.Len())
}

func TestAssessmentSetTotalRejectsMalformedScores(t *testing.T) {
	set := NewAssessmentSet([]models.Assessment{{ID: "ca", MaxScore: 40}})

	_, err := set.Total([]models.AssessmentScore{{ResultID: "r1", AssessmentID: "ca", Score: 41}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidScore.Code, appErrors.FromError(err).Code)

	_, err = set.Total([]models.AssessmentScore{
		{ResultID: "r1", AssessmentID: "ca", Score: 10},
		{ResultID: "r1", AssessmentID: "ca", Score: 12},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidScore.Code, appErrors.FromError(err).Code)
}
