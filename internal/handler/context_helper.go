package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/middleware"
	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/response"
)

// tenantClaims returns the caller's claims. Every results route is school scoped, so a
// request without claims or without a school is answered with 401 and ok is false.
func tenantClaims(c *gin.Context) (claims *models.JWTClaims, ok bool) {
	if value, exists := c.Get(middleware.ContextUserKey); exists {
		claims, _ = value.(*models.JWTClaims)
	}
	if claims == nil || claims.SchoolID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}
