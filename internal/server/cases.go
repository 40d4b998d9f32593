package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/taxdesk/taxdesk/internal/audit/domain"
	"github.com/taxdesk/taxdesk/internal/taxcase/domain"
)

func (s *Server) ListCases(c *gin.Context) {
	var req domain.ListCaseRequest
	req.PageToken = c.Query("page_token")
	if size := c.Query("page_size"); size != "" {
		if err := bindInt(size, &req.PageSize); err != nil {
			AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
			return
		}
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
			return
		}
		req.ClientID = clientID
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		req.Status = status
	}

	resp, err := s.caseSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateCase(c *gin.Context) {
	var req struct {
		ClientID string `json:"client_id"`
		TaxYear  int    `json:"tax_year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	clientID, err := snowflake.ParseString(req.ClientID)
	if err != nil {
		AbortWithError(c, newValidationError("client_id", "invalid_client_id", "invalid client id"))
		return
	}

	tc, err := s.caseSvc.Create(c.Request.Context(), domain.CreateCaseRequest{
		ClientID: clientID,
		TaxYear:  req.TaxYear,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"case": tc})
}

func (s *Server) GetCase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tc, err := s.caseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"case": tc})
}

func (s *Server) TransitionCase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tc, err := s.caseSvc.Transition(c.Request.Context(), id, target)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Best effort; a failed audit write never fails the transition.
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "case.status_changed",
		TargetType: auditdomain.TargetCase,
		TargetID:   tc.ID,
		Metadata:   map[string]any{"status": string(tc.Status)},
	})

	c.JSON(http.StatusOK, gin.H{"case": tc})
}

func (s *Server) ListCaseActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Visibility piggybacks on the case read; invisible cases 404 here.
	if _, err := s.caseSvc.GetByID(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if err := bindInt(raw, &limit); err != nil {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
	}

	entries, err := s.auditSvc.ListByTarget(c.Request.Context(), auditdomain.TargetCase, id, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

func (s *Server) NextCaseStatuses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	statuses, err := s.caseSvc.NextStatuses(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}
