package service

import "github.com/noah-isme/school-results-api/internal/models"

// DetermineGrade returns the grade of the first rule whose closed range contains score.
// Rules are scanned in the order given; overlapping ranges resolve to the earliest rule.
// A score outside every range yields N/A with an out-of-range comment.
func DetermineGrade(score float64, rules []models.GradeRule) models.GradeOutcome {
	for _, rule := range rules {
		if score >= rule.MinScore && score <= rule.MaxScore {
			return models.GradeOutcome{Grade: rule.Grade, Comment: rule.Comment}
		}
	}
	return models.GradeOutcome{Grade: models.GradeNotAvailable, Comment: models.CommentOutOfRange}
}
