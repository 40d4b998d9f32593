package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taxdesk/taxdesk/internal/organization/domain"
)

func (s *Server) CreateOrg(c *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		SupportEmail string `json:"support_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.orgSvc.Create(c.Request.Context(), domain.CreateOrganizationRequest{
		Name:         req.Name,
		SupportEmail: req.SupportEmail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"org": org})
}

func (s *Server) GetOrg(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	org, err := s.orgSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"org": org})
}

func (s *Server) ListStaff(c *gin.Context) {
	staff, err := s.orgSvc.ListStaff(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

func (s *Server) InviteStaff(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invite, err := s.orgSvc.Invite(c.Request.Context(), domain.InviteRequest{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invite": invite})
}

func (s *Server) UpdateStaffRole(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.orgSvc.UpdateStaffRole(c.Request.Context(), staffID, req.Role); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DeactivateStaff(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.orgSvc.DeactivateStaff(c.Request.Context(), staffID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
