package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/repository"
	"github.com/noah-isme/school-results-api/internal/service"
	"github.com/noah-isme/school-results-api/pkg/cache"
	"github.com/noah-isme/school-results-api/pkg/config"
	"github.com/noah-isme/school-results-api/pkg/database"
	"github.com/noah-isme/school-results-api/pkg/logger"
)

func newComputeCmd() *cobra.Command {
	var (
		schoolID  string
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute results for a school's current term and session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logr, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logr.Sync() //nolint:errcheck

			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer db.Close()

			var guard service.RunGuard = service.NewLocalRunGuard(cfg.Computation.LockWait)
			redisClient, err := cache.NewRedis(cmd.Context(), cfg.Redis)
			if err != nil {
				return err
			}
			if redisClient != nil {
				defer redisClient.Close()
			}
			if redisClient != nil && cfg.Computation.UseRedisLock {
				guard = service.NewRedisRunGuard(repository.NewCacheRepository(redisClient, logr), cfg.Computation.LockTTL, cfg.Computation.LockWait, logr)
			}

			computer := service.NewResultComputationService(service.ComputationDeps{
				Periods:     repository.NewTermRepository(db),
				Classes:     repository.NewClassRepository(db),
				Enrollments: repository.NewEnrollmentRepository(db),
				Subjects:    repository.NewSubjectRepository(db),
				Assessments: repository.NewAssessmentRepository(db),
				GradeRules:  repository.NewGradeRuleRepository(db),
				Results:     repository.NewResultRepository(db),
				Guard:       guard,
			}, cfg.Computation.Parallelism, logr)
			runs := service.NewComputationJobService(repository.NewComputationRunRepository(db), computer, cfg.Computation.RunTimeout, logr)

			report, err := runs.Run(cmd.Context(), schoolID, "resultsctl")
			if err != nil {
				logr.Error("computation failed", zap.String("school_id", schoolID), zap.Error(err))
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, nil, outputFmt)
		},
	}

	cmd.Flags().StringVar(&schoolID, "school", "", "School ID (required)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("school")

	return cmd
}
