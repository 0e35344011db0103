package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*models.JWTClaims, error) {
	return s.claims, s.err
}

func newRouter(validator tokenValidator, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/students/:studentId", JWT(validator), RBAC(allowed...), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.TenantKey))
	})
	return router
}

func serve(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	router := newRouter(stubValidator{}, string(models.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/students/s1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/students/s1", "Token abc").Code)

	failing := newRouter(stubValidator{err: appErrors.Wrap(errors.New("expired"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")}, string(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, serve(failing, "/students/s1", "Bearer abc").Code)
}

func TestJWTSetsTenant(t *testing.T) {
	router := newRouter(stubValidator{claims: &models.JWTClaims{SchoolID: "school-1", Role: models.RoleAdmin}}, string(models.RoleAdmin))

	recorder := serve(router, "/students/s1", "Bearer abc")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "school-1", recorder.Body.String())
}

func TestRBACSelfStudent(t *testing.T) {
	student := &models.JWTClaims{SchoolID: "school-1", Role: models.RoleStudent, StudentID: "s1"}
	router := newRouter(stubValidator{claims: student}, string(models.RoleAdmin), SelfStudent)

	assert.Equal(t, http.StatusOK, serve(router, "/students/s1", "Bearer abc").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, "/students/s2", "Bearer abc").Code)

	parent := &models.JWTClaims{SchoolID: "school-1", Role: models.RoleParent, StudentID: "s1"}
	router = newRouter(stubValidator{claims: parent}, string(models.RoleAdmin), SelfStudent)
	assert.Equal(t, http.StatusForbidden, serve(router, "/students/s1", "Bearer abc").Code)
}

func TestResponseMetaRecordsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")
}
