package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/taxdesk/taxdesk/internal/client/domain"
)

func (s *Server) ListClients(c *gin.Context) {
	var req domain.ListClientRequest
	req.PageToken = c.Query("page_token")
	req.Search = c.Query("search")
	if size := c.Query("page_size"); size != "" {
		if err := bindInt(size, &req.PageSize); err != nil {
			AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
			return
		}
	}

	resp, err := s.clientSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateClient(c *gin.Context) {
	var req struct {
		LegalName string `json:"legal_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	client, err := s.clientSvc.Create(c.Request.Context(), domain.CreateClientRequest{
		LegalName: req.LegalName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

func (s *Server) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	client, err := s.clientSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	assignments, err := s.clientSvc.ListAssignments(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client, "assignments": assignments})
}

func (s *Server) AssignStaff(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		StaffID string `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	staffID, err := snowflake.ParseString(req.StaffID)
	if err != nil {
		AbortWithError(c, newValidationError("staff_id", "invalid_staff_id", "invalid staff id"))
		return
	}

	assignment, err := s.clientSvc.Assign(c.Request.Context(), clientID, staffID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

func (s *Server) UnassignStaff(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	staffID, ok := pathID(c, "staffID")
	if !ok {
		return
	}

	if err := s.clientSvc.Unassign(c.Request.Context(), clientID, staffID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
