package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/service"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/response"
)

type releaseManager interface {
	List(ctx context.Context, schoolID string) ([]models.ResultRelease, error)
	Create(ctx context.Context, schoolID string, req service.CreateReleaseRequest) (*models.ResultRelease, error)
	Toggle(ctx context.Context, schoolID, id string) (*models.ResultRelease, error)
	Current(ctx context.Context, schoolID string) (*models.ResultRelease, error)
}

// ReleaseHandler manages result releases.
type ReleaseHandler struct {
	releases releaseManager
}

// NewReleaseHandler constructs the handler.
func NewReleaseHandler(releases releaseManager) *ReleaseHandler {
	return &ReleaseHandler{releases: releases}
}

// List godoc
// @Summary List result releases
// @Tags Releases
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /results/releases [get]
func (h *ReleaseHandler) List(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	releases, err := h.releases.List(c.Request.Context(), claims.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, releases)
}

// Create godoc
// @Summary Create a result release for a term and session
// @Tags Releases
// @Accept json
// @Produce json
// @Param payload body service.CreateReleaseRequest true "Release payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /results/releases [post]
func (h *ReleaseHandler) Create(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	var req service.CreateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	release, err := h.releases.Create(c.Request.Context(), claims.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, release)
}

// Toggle godoc
// @Summary Publish or unpublish a result release
// @Tags Releases
// @Produce json
// @Param id path string true "Release ID"
// @Success 200 {object} response.Envelope
// @Router /results/releases/{id}/toggle [patch]
func (h *ReleaseHandler) Toggle(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	release, err := h.releases.Toggle(c.Request.Context(), claims.SchoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, release)
}

// Current godoc
// @Summary Release of the current term and session
// @Tags Releases
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /results/releases/current [get]
func (h *ReleaseHandler) Current(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	release, err := h.releases.Current(c.Request.Context(), claims.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, release)
}
