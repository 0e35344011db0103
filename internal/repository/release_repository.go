package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

const releaseColumns = `id, school_id, term_id, session_id, is_published, release_date, created_at`

// ReleaseRepository persists result releases.
type ReleaseRepository struct {
	db *sqlx.DB
}

// NewReleaseRepository constructs the repository.
func NewReleaseRepository(db *sqlx.DB) *ReleaseRepository {
	return &ReleaseRepository{db: db}
}

// ListBySchool returns releases of a school, newest first.
func (r *ReleaseRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.ResultRelease, error) {
	query := `SELECT ` + releaseColumns + ` FROM result_releases WHERE school_id = $1 ORDER BY created_at DESC`
	var releases []models.ResultRelease
	if err := r.db.SelectContext(ctx, &releases, query, schoolID); err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	return releases, nil
}

// FindByID returns a release scoped to its school.
func (r *ReleaseRepository) FindByID(ctx context.Context, schoolID, id string) (*models.ResultRelease, error) {
	query := `SELECT ` + releaseColumns + ` FROM result_releases WHERE school_id = $1 AND id = $2`
	var release models.ResultRelease
	if err := r.db.GetContext(ctx, &release, query, schoolID, id); err != nil {
		return nil, err
	}
	return &release, nil
}

// FindByPeriod returns the release of a term and session.
func (r *ReleaseRepository) FindByPeriod(ctx context.Context, schoolID, termID, sessionID string) (*models.ResultRelease, error) {
	query := `SELECT ` + releaseColumns + ` FROM result_releases WHERE school_id = $1 AND term_id = $2 AND session_id = $3`
	var release models.ResultRelease
	if err := r.db.GetContext(ctx, &release, query, schoolID, termID, sessionID); err != nil {
		return nil, err
	}
	return &release, nil
}

// Create inserts a new release.
func (r *ReleaseRepository) Create(ctx context.Context, release *models.ResultRelease) error {
	if release.ID == "" {
		release.ID = uuid.NewString()
	}
	if release.CreatedAt.IsZero() {
		release.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO result_releases (id, school_id, term_id, session_id, is_published, release_date, created_at)
        VALUES (:id, :school_id, :term_id, :session_id, :is_published, :release_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, release); err != nil {
		return fmt.Errorf("create release: %w", err)
	}
	return nil
}

// SetPublished updates the publication flag and release date.
func (r *ReleaseRepository) SetPublished(ctx context.Context, schoolID, id string, published bool, releaseDate *time.Time) error {
	const query = `UPDATE result_releases SET is_published = $3, release_date = $4 WHERE school_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, schoolID, id, published, releaseDate); err != nil {
		return fmt.Errorf("update release: %w", err)
	}
	return nil
}
