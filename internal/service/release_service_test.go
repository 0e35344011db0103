package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/repository/memdb"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

func newReleaseService(db *memdb.DB) *ReleaseService {
	return NewReleaseService(memdb.NewReleaseRepository(db), memdb.NewTermRepository(db), nil, nil)
}

func TestReleaseServiceCreateAndToggle(t *testing.T) {
	db := seeded(threeStudentDataset())
	svc := newReleaseService(db)
	ctx := context.Background()

	release, err := svc.Create(ctx, testSchool, CreateReleaseRequest{TermID: "term-1", SessionID: "session-1"})
	require.NoError(t, err)
	assert.False(t, release.IsPublished)
	assert.Nil(t, release.ReleaseDate)

	_, err = svc.Create(ctx, testSchool, CreateReleaseRequest{TermID: "term-1", SessionID: "session-1"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	toggled, err := svc.Toggle(ctx, testSchool, release.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublished)
	assert.NotNil(t, toggled.ReleaseDate)

	current, err := svc.Current(ctx, testSchool)
	require.NoError(t, err)
	assert.Equal(t, release.ID, current.ID)
	assert.True(t, current.IsPublished)

	list, err := svc.List(ctx, testSchool)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReleaseServiceValidation(t *testing.T) {
	svc := newReleaseService(memdb.Open())
	_, err := svc.Create(context.Background(), testSchool, CreateReleaseRequest{TermID: "term-1"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Toggle(context.Background(), testSchool, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReleaseServiceEnsureReadable(t *testing.T) {
	db := seeded(threeStudentDataset())
	svc := newReleaseService(db)
	ctx := context.Background()

	assert.NoError(t, svc.EnsureReadable(ctx, models.RoleTeacher, testSchool, "term-1", "session-1"))
	assert.ErrorIs(t, svc.EnsureReadable(ctx, models.RoleStudent, testSchool, "term-1", "session-1"), appErrors.ErrNotReleased)

	release, err := svc.Create(ctx, testSchool, CreateReleaseRequest{TermID: "term-1", SessionID: "session-1"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.EnsureReadable(ctx, models.RoleParent, testSchool, "term-1", "session-1"), appErrors.ErrNotReleased)

	_, err = svc.Toggle(ctx, testSchool, release.ID)
	require.NoError(t, err)
	assert.NoError(t, svc.EnsureReadable(ctx, models.RoleParent, testSchool, "term-1", "session-1"))
}
