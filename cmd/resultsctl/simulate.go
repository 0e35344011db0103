package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/school-results-api/internal/repository/memdb"
	"github.com/noah-isme/school-results-api/internal/service"
)

func newSimulateCmd() *cobra.Command {
	var (
		file        string
		outputFmt   string
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compute results for a YAML dataset in memory",
		Long:  `Loads a school dataset from YAML, runs a full computation against an in-memory store and prints class standings and subject results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer f.Close()

			ds, err := memdb.DecodeDataset(f)
			if err != nil {
				return err
			}
			db := memdb.Open()
			db.Seed(ds)

			computer := service.NewResultComputationService(service.ComputationDeps{
				Periods:     memdb.NewTermRepository(db),
				Classes:     memdb.NewClassRepository(db),
				Enrollments: memdb.NewEnrollmentRepository(db),
				Subjects:    memdb.NewSubjectRepository(db),
				Assessments: memdb.NewAssessmentRepository(db),
				GradeRules:  memdb.NewGradeRuleRepository(db),
				Results:     memdb.NewResultRepository(db),
			}, parallelism, nil)

			report, err := computer.Compute(cmd.Context(), ds.SchoolID)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, db, outputFmt)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the YAML dataset (required)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "Classes computed concurrently")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
