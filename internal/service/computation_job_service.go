package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/jobs"
)

// ComputationJobType tags queued computation jobs.
const ComputationJobType = "result_computation"

type computationRunRepo interface {
	Create(ctx context.Context, run *models.ComputationRun) error
	Update(ctx context.Context, run *models.ComputationRun) error
	FindByID(ctx context.Context, schoolID, id string) (*models.ComputationRun, error)
}

type resultComputer interface {
	ComputeForRun(ctx context.Context, schoolID, runID string) (*models.ComputationReport, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type computationJobPayload struct {
	RunID    string
	SchoolID string
}

// ComputationJobService records every computation run and executes it inline or on the job queue.
type ComputationJobService struct {
	runs       computationRunRepo
	computer   resultComputer
	queue      jobEnqueuer
	runTimeout time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewComputationJobService constructs the service. The queue may be attached later with SetQueue.
func NewComputationJobService(runs computationRunRepo, computer resultComputer, runTimeout time.Duration, logger *zap.Logger) *ComputationJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	return &ComputationJobService{
		runs:       runs,
		computer:   computer,
		runTimeout: runTimeout,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetQueue attaches the queue used by Enqueue.
func (s *ComputationJobService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Run computes results synchronously and records the outcome.
func (s *ComputationJobService) Run(ctx context.Context, schoolID, actorID string) (*models.ComputationReport, error) {
	run := &models.ComputationRun{SchoolID: schoolID, Status: models.ComputationRunQueued, CreatedBy: actorID, CreatedAt: s.now()}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record computation run")
	}
	return s.execute(ctx, run)
}

// Enqueue records a queued run and hands it to the background workers.
func (s *ComputationJobService) Enqueue(ctx context.Context, schoolID, actorID string) (*models.ComputationRun, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "computation queue not configured")
	}
	run := &models.ComputationRun{SchoolID: schoolID, Status: models.ComputationRunQueued, CreatedBy: actorID, CreatedAt: s.now()}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record computation run")
	}
	job := jobs.Job{ID: run.ID, Type: ComputationJobType, Payload: computationJobPayload{RunID: run.ID, SchoolID: schoolID}}
	if err := s.queue.Enqueue(job); err != nil {
		s.finish(context.WithoutCancel(ctx), run, nil, err)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, appErrors.ErrQueueFull.Code, appErrors.ErrQueueFull.Status, "computation queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue computation run")
	}
	s.logger.Info("computation run queued", zap.String("run_id", run.ID), zap.String("school_id", schoolID))
	return run, nil
}

// HandleJob is the queue handler for computation jobs. Client-side failures are not retried.
func (s *ComputationJobService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(computationJobPayload)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID))
	}
	run, err := s.runs.FindByID(ctx, payload.SchoolID, payload.RunID)
	if err != nil {
		return jobs.Permanent(fmt.Errorf("load computation run %s: %w", payload.RunID, err))
	}
	if _, err := s.execute(ctx, run); err != nil {
		if appErrors.FromError(err).Retryable() {
			return err
		}
		return jobs.Permanent(err)
	}
	return nil
}

// Get returns a run of the school.
func (s *ComputationJobService) Get(ctx context.Context, schoolID, id string) (*models.ComputationRun, error) {
	run, err := s.runs.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "computation run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load computation run")
	}
	return run, nil
}

func (s *ComputationJobService) execute(ctx context.Context, run *models.ComputationRun) (*models.ComputationReport, error) {
	started := s.now()
	run.Status = models.ComputationRunRunning
	run.StartedAt = &started
	run.ErrorMessage = nil
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.Warn("mark computation run running failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	report, err := s.computer.ComputeForRun(runCtx, run.SchoolID, run.ID)
	s.finish(context.WithoutCancel(ctx), run, report, err)
	return report, err
}

func (s *ComputationJobService) finish(ctx context.Context, run *models.ComputationRun, report *models.ComputationReport, runErr error) {
	finished := s.now()
	run.FinishedAt = &finished
	if runErr != nil {
		msg := runErr.Error()
		run.Status = models.ComputationRunFailed
		run.ErrorMessage = &msg
	} else {
		run.Status = models.ComputationRunSucceeded
		termID, sessionID := report.Scope.TermID, report.Scope.SessionID
		run.TermID = &termID
		run.SessionID = &sessionID
		run.Enrollments = len(report.Results)
	}
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.Error("record computation run outcome failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}
