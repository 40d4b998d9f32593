package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
)

func serveIndex(c *gin.Context) {
	c.File("./public/index.html")
}

// AuthRequired verifies the bearer token, resolves the principal, and puts
// it on the request context for the scope layer.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		claims, err := s.authn.Verify(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		principal, err := s.authn.Resolve(c.Request.Context(), claims)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := orgcontext.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireOrgAdmin gates routes on an admin-equivalent role.
func (s *Server) RequireOrgAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := orgcontext.PrincipalFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if principal.Role != organizationdomain.RoleAdmin && principal.OrgRole != organizationdomain.OrgRoleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// PortalRateLimit throttles the public token-gated routes per client IP.
func (s *Server) PortalRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.portalLimiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyReqs)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
