package service

import (
	"fmt"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

// AggregateSubjectTotal sums the scores of one result. Negative values, including the
// not-entered sentinel, contribute nothing.
func AggregateSubjectTotal(scores []models.AssessmentScore) int {
	total := 0
	for _, s := range scores {
		if s.Score > 0 {
			total += s.Score
		}
	}
	return total
}

// AssessmentSet is the snapshot of a school's assessments taken at the start of a run.
type AssessmentSet struct {
	maxScores map[string]int
}

// NewAssessmentSet indexes assessments by ID.
func NewAssessmentSet(assessments []models.Assessment) AssessmentSet {
	set := AssessmentSet{maxScores: make(map[string]int, len(assessments))}
	for _, a := range assessments {
		set.maxScores[a.ID] = a.MaxScore
	}
	return set
}

// Len returns the number of assessments in the set.
func (s AssessmentSet) Len() int {
	return len(s.maxScores)
}

// Total aggregates the scores of one result. Scores for assessments outside the set are
// ignored. A score above its assessment's maximum, or a second score for the same
// assessment, is malformed input and fails with ErrInvalidScore.
func (s AssessmentSet) Total(scores []models.AssessmentScore) (int, error) {
	seen := make(map[string]struct{}, len(scores))
	kept := make([]models.AssessmentScore, 0, len(scores))
	for _, score := range scores {
		maxScore, ok := s.maxScores[score.AssessmentID]
		if !ok {
			continue
		}
		if _, dup := seen[score.AssessmentID]; dup {
			return 0, appErrors.Clone(appErrors.ErrInvalidScore, fmt.Sprintf("assessment %s scored twice on result %s", score.AssessmentID, score.ResultID))
		}
		seen[score.AssessmentID] = struct{}{}
		if score.Score > maxScore {
			return 0, appErrors.Clone(appErrors.ErrInvalidScore, fmt.Sprintf("score %d exceeds max %d for assessment %s on result %s", score.Score, maxScore, score.AssessmentID, score.ResultID))
		}
		kept = append(kept, score)
	}
	return AggregateSubjectTotal(kept), nil
}
