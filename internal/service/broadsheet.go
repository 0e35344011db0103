package service

import (
	"strconv"

	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/pkg/export"
)

// BroadsheetTable flattens a master sheet into one row per student with a column per subject.
// Subjects without a result render empty.
func BroadsheetTable(sheet *models.MasterSheet) export.Table {
	headers := []string{"Position", "Student ID", "Student"}
	for _, subject := range sheet.Subjects {
		headers = append(headers, subject.Name)
	}
	headers = append(headers, "Total", "Average")

	rows := make([][]string, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		row := []string{"", r.StudentID, r.StudentName}
		if r.Position != nil {
			row[0] = PositionLabel(*r.Position)
		}
		for _, subject := range sheet.Subjects {
			cell := ""
			if score, ok := r.Scores[subject.ID]; ok && score >= 0 {
				cell = strconv.Itoa(score)
			}
			row = append(row, cell)
		}
		row = append(row, formatOptional(r.Total, 0), formatOptional(r.Average, 2))
		rows = append(rows, row)
	}
	return export.Table{Headers: headers, Rows: rows}
}

func formatOptional(v *float64, precision int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}
