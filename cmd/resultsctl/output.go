package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/repository/memdb"
	"github.com/noah-isme/school-results-api/internal/service"
)

// writeReport renders a computation report. With db set, per-subject results are listed too.
func writeReport(w io.Writer, report *models.ComputationReport, db *memdb.DB, format string) error {
	if format == "json" {
		payload := map[string]interface{}{"report": report}
		if db != nil {
			payload["results"] = db.Results()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Fprintf(w, "school %s  term %s  session %s\n", report.Scope.SchoolID, report.Scope.TermID, report.Scope.SessionID)
	fmt.Fprintf(w, "classes processed: %d  results written: %d\n\n", report.ClassesProcessed, report.ResultsWritten)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tSTUDENT\tTOTAL\tAVERAGE\tPOSITION")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.2f\t%s\n", r.ClassID, r.StudentID, r.Total, r.Average, service.PositionLabel(r.Position))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if db == nil {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tSUBJECT\tSTUDENT\tTOTAL\tGRADE\tPOSITION\tHIGHEST\tLOWEST")
	for _, res := range db.Results() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n", res.ClassID, res.SubjectID, res.StudentID, res.TotalScore, res.Grade,
			positionOrDash(res.Position), intOrDash(res.HighestScore), intOrDash(res.LowestScore))
	}
	return tw.Flush()
}

func positionOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return service.PositionLabel(*p)
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
