package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/pkg/config"
)

const (
	allowMethods  = "GET, POST, PATCH, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, X-Request-ID"
	exposeHeaders = "X-Request-ID, Content-Disposition"
)

// policy is the resolved form of config.CORSConfig.
type policy struct {
	origins map[string]struct{}
	maxAge  string
}

func newPolicy(cfg config.CORSConfig) policy {
	p := policy{maxAge: strconv.Itoa(int(cfg.MaxAge / time.Second))}
	if len(cfg.AllowedOrigins) == 0 {
		return p
	}
	p.origins = make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		p.origins[normalise(origin)] = struct{}{}
	}
	return p
}

func normalise(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}

// open reports whether every origin is accepted.
func (p policy) open() bool { return p.origins == nil }

// allowOrigin returns the Access-Control-Allow-Origin value for a request origin, or "" to withhold it.
func (p policy) allowOrigin(origin string) string {
	switch {
	case origin == "" && p.open():
		return "*"
	case origin == "":
		return ""
	case p.open():
		return origin
	}
	if _, ok := p.origins[normalise(origin)]; ok {
		return origin
	}
	return ""
}

// New builds the CORS middleware. A config without origins accepts any origin.
// Preflights from an origin outside the list are refused with 403.
func New(cfg config.CORSConfig) gin.HandlerFunc {
	p := newPolicy(cfg)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		allowed := p.allowOrigin(origin)
		if allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
			// credentials are only valid next to an echoed origin
			if allowed != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		if origin != "" && allowed == "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Max-Age", p.maxAge)
		c.AbortWithStatus(http.StatusNoContent)
	}
}
