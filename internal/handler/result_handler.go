package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/middleware"
	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/service"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/export"
	"github.com/noah-isme/school-results-api/pkg/response"
)

type computationRunner interface {
	Run(ctx context.Context, schoolID, actorID string) (*models.ComputationReport, error)
	Enqueue(ctx context.Context, schoolID, actorID string) (*models.ComputationRun, error)
	Get(ctx context.Context, schoolID, id string) (*models.ComputationRun, error)
}

type reportReader interface {
	LatestReport(ctx context.Context, schoolID string) (*models.ComputationReport, error)
}

type resultSheetProvider interface {
	StudentSheet(ctx context.Context, viewer *models.JWTClaims, q service.StudentSheetQuery) (*models.StudentResultSheet, error)
	MasterSheet(ctx context.Context, schoolID string, q service.MasterSheetQuery) (*models.MasterSheet, error)
	AssessmentStatus(ctx context.Context, schoolID string, q service.AssessmentStatusQuery) (*models.AssessmentStatus, error)
}

// ResultHandler exposes result computation and result sheet endpoints.
type ResultHandler struct {
	runs    computationRunner
	reports reportReader
	sheets  resultSheetProvider
}

// NewResultHandler constructs the handler.
func NewResultHandler(runs computationRunner, reports reportReader, sheets resultSheetProvider) *ResultHandler {
	return &ResultHandler{runs: runs, reports: reports, sheets: sheets}
}

// Compute godoc
// @Summary Compute results for the current term and session
// @Description Recomputes totals, grades, subject positions and class positions for every class of the school.
// @Tags Results
// @Produce json
// @Param async query bool false "Queue the run and return immediately"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /results/compute [post]
func (h *ResultHandler) Compute(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		run, err := h.runs.Enqueue(c.Request.Context(), claims.SchoolID, claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, run)
		return
	}
	report, err := h.runs.Run(c.Request.Context(), claims.SchoolID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// RunStatus godoc
// @Summary Computation run status
// @Tags Results
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/runs/{id} [get]
func (h *ResultHandler) RunStatus(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	run, err := h.runs.Get(c.Request.Context(), claims.SchoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}

// LatestReport godoc
// @Summary Latest computation report
// @Tags Results
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/report [get]
func (h *ResultHandler) LatestReport(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	report, err := h.reports.LatestReport(c.Request.Context(), claims.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, true)
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// StudentSheet godoc
// @Summary Student result sheet
// @Tags Results
// @Produce json
// @Param studentId path string true "Student ID"
// @Param class_id query string true "Class ID"
// @Param term_id query string false "Term ID (defaults to current)"
// @Param session_id query string false "Session ID (defaults to current)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /results/students/{studentId} [get]
func (h *ResultHandler) StudentSheet(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	var q service.StudentSheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	q.StudentID = c.Param("studentId")
	sheet, err := h.sheets.StudentSheet(c.Request.Context(), claims, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// MasterSheet godoc
// @Summary Class master score sheet
// @Tags Results
// @Produce json
// @Param classId path string true "Class ID"
// @Param term_id query string false "Term ID (defaults to current)"
// @Param session_id query string false "Session ID (defaults to current)"
// @Param format query string false "json (default) or csv"
// @Produce text/csv
// @Success 200 {object} response.Envelope
// @Router /results/classes/{classId}/master-sheet [get]
func (h *ResultHandler) MasterSheet(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	var q service.MasterSheetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	q.ClassID = c.Param("classId")
	sheet, err := h.sheets.MasterSheet(c.Request.Context(), claims.SchoolID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "master-sheet-"+sheet.ClassID+".csv"))
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, service.BroadsheetTable(sheet)); err != nil {
			_ = c.Error(err)
		}
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// AssessmentStatus godoc
// @Summary Check whether every assessment score of a class subject is entered
// @Tags Results
// @Produce json
// @Param class_id query string true "Class ID"
// @Param subject_id query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /results/assessment-status [get]
func (h *ResultHandler) AssessmentStatus(c *gin.Context) {
	claims, ok := tenantClaims(c)
	if !ok {
		return
	}
	var q service.AssessmentStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	status, err := h.sheets.AssessmentStatus(c.Request.Context(), claims.SchoolID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}
