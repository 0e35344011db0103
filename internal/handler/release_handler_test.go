package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/middleware"
	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/service"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type releaseManagerMock struct {
	created   service.CreateReleaseRequest
	toggledID string
	err       error
}

func (m *releaseManagerMock) List(context.Context, string) ([]models.ResultRelease, error) {
	return []models.ResultRelease{{ID: "rel-1"}}, m.err
}

func (m *releaseManagerMock) Create(_ context.Context, schoolID string, req service.CreateReleaseRequest) (*models.ResultRelease, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.ResultRelease{ID: "rel-1", SchoolID: schoolID, TermID: req.TermID, SessionID: req.SessionID}, nil
}

func (m *releaseManagerMock) Toggle(_ context.Context, _ string, id string) (*models.ResultRelease, error) {
	m.toggledID = id
	return &models.ResultRelease{ID: id, IsPublished: true}, m.err
}

func (m *releaseManagerMock) Current(context.Context, string) (*models.ResultRelease, error) {
	return &models.ResultRelease{ID: "rel-1"}, m.err
}

func TestReleaseHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	releases := &releaseManagerMock{}
	handler := NewReleaseHandler(releases)

	payload, _ := json.Marshal(service.CreateReleaseRequest{TermID: "term-1", SessionID: "session-1"})
	c, w := newGinContext(http.MethodPost, "/results/releases", payload)
	c.Set(middleware.ContextUserKey, adminClaims())
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "term-1", releases.created.TermID)
}

func TestReleaseHandlerCreateRejectsBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReleaseHandler(&releaseManagerMock{})

	c, w := newGinContext(http.MethodPost, "/results/releases", []byte("{"))
	c.Set(middleware.ContextUserKey, adminClaims())
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReleaseHandlerToggleAndConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	releases := &releaseManagerMock{}
	handler := NewReleaseHandler(releases)

	c, w := newGinContext(http.MethodPatch, "/results/releases/rel-9/toggle", nil)
	c.Params = gin.Params{{Key: "id", Value: "rel-9"}}
	c.Set(middleware.ContextUserKey, adminClaims())
	handler.Toggle(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rel-9", releases.toggledID)

	conflicting := NewReleaseHandler(&releaseManagerMock{err: appErrors.ErrConflict})
	payload, _ := json.Marshal(service.CreateReleaseRequest{TermID: "term-1", SessionID: "session-1"})
	c, w = newGinContext(http.MethodPost, "/results/releases", payload)
	c.Set(middleware.ContextUserKey, adminClaims())
	conflicting.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}
