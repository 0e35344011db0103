package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type releaseRepo interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.ResultRelease, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.ResultRelease, error)
	FindByPeriod(ctx context.Context, schoolID, termID, sessionID string) (*models.ResultRelease, error)
	Create(ctx context.Context, release *models.ResultRelease) error
	SetPublished(ctx context.Context, schoolID, id string, published bool, releaseDate *time.Time) error
}

// CreateReleaseRequest opens a release for a term and session.
type CreateReleaseRequest struct {
	TermID      string     `json:"term_id" validate:"required"`
	SessionID   string     `json:"session_id" validate:"required"`
	IsPublished bool       `json:"is_published"`
	ReleaseDate *time.Time `json:"release_date"`
}

// ReleaseService manages result releases and gates student and parent reads.
type ReleaseService struct {
	releases  releaseRepo
	periods   periodResolver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReleaseService constructs the service.
func NewReleaseService(releases releaseRepo, periods periodResolver, validate *validator.Validate, logger *zap.Logger) *ReleaseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReleaseService{
		releases:  releases,
		periods:   periods,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns every release of the school.
func (s *ReleaseService) List(ctx context.Context, schoolID string) ([]models.ResultRelease, error) {
	releases, err := s.releases.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list releases")
	}
	if releases == nil {
		releases = []models.ResultRelease{}
	}
	return releases, nil
}

// Create opens a release. A period can only have one release.
func (s *ReleaseService) Create(ctx context.Context, schoolID string, req CreateReleaseRequest) (*models.ResultRelease, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid release payload")
	}
	if _, err := s.releases.FindByPeriod(ctx, schoolID, req.TermID, req.SessionID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "release already exists for term and session")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check release")
	}

	release := &models.ResultRelease{
		SchoolID:    schoolID,
		TermID:      req.TermID,
		SessionID:   req.SessionID,
		IsPublished: req.IsPublished,
		ReleaseDate: req.ReleaseDate,
	}
	if release.IsPublished && release.ReleaseDate == nil {
		now := s.now()
		release.ReleaseDate = &now
	}
	if err := s.releases.Create(ctx, release); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create release")
	}
	s.logger.Info("result release created", zap.String("school_id", schoolID), zap.String("release_id", release.ID), zap.Bool("published", release.IsPublished))
	return release, nil
}

// Toggle flips the publication flag of a release.
func (s *ReleaseService) Toggle(ctx context.Context, schoolID, id string) (*models.ResultRelease, error) {
	release, err := s.releases.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "release not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load release")
	}
	release.IsPublished = !release.IsPublished
	if release.IsPublished && release.ReleaseDate == nil {
		now := s.now()
		release.ReleaseDate = &now
	}
	if err := s.releases.SetPublished(ctx, schoolID, id, release.IsPublished, release.ReleaseDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update release")
	}
	s.logger.Info("result release toggled", zap.String("school_id", schoolID), zap.String("release_id", id), zap.Bool("published", release.IsPublished))
	return release, nil
}

// Current returns the release of the school's current term and session.
func (s *ReleaseService) Current(ctx context.Context, schoolID string) (*models.ResultRelease, error) {
	term, err := s.periods.FindCurrentTerm(ctx, schoolID)
	if err != nil {
		return nil, s.periodError(err, "current term not set for the school")
	}
	session, err := s.periods.FindCurrentSession(ctx, schoolID)
	if err != nil {
		return nil, s.periodError(err, "current session not set for the school")
	}
	release, err := s.releases.FindByPeriod(ctx, schoolID, term.ID, session.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no release for the current term and session")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load release")
	}
	return release, nil
}

// EnsureReadable rejects student and parent reads of an unpublished period.
func (s *ReleaseService) EnsureReadable(ctx context.Context, role models.UserRole, schoolID, termID, sessionID string) error {
	if role.CanBypassRelease() {
		return nil
	}
	release, err := s.releases.FindByPeriod(ctx, schoolID, termID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotReleased
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load release")
	}
	if !release.IsPublished {
		return appErrors.ErrNotReleased
	}
	return nil
}

func (s *ReleaseService) periodError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrConfiguration, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve reporting period")
}
