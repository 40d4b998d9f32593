package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/taxdesk/taxdesk/internal/audit/domain"
	"github.com/taxdesk/taxdesk/internal/magiclink/domain"
)

func (s *Server) IssueLink(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Type     string `json:"type"`
		TTLHours *int   `json:"ttl_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// The staff route must only hand out links for cases it can see.
	if _, err := s.caseSvc.GetByID(c.Request.Context(), caseID); err != nil {
		AbortWithError(c, err)
		return
	}

	issueReq := domain.IssueRequest{
		CaseID: caseID,
		Type:   domain.LinkType(req.Type),
	}
	if req.TTLHours != nil {
		ttl := time.Duration(*req.TTLHours) * time.Hour
		issueReq.TTL = &ttl
	}

	resp, err := s.linkSvc.Issue(c.Request.Context(), issueReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The token is masked before it reaches the audit table.
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "link.issued",
		TargetType: auditdomain.TargetCase,
		TargetID:   caseID,
		Metadata: map[string]any{
			"type":  string(issueReq.Type),
			"token": resp.Token,
		},
	})

	c.JSON(http.StatusCreated, gin.H{
		"link":       resp.Link,
		"url":        resp.URL,
		"expires_at": resp.ExpiresAt,
	})
}

func (s *Server) ListLinks(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := s.caseSvc.GetByID(c.Request.Context(), caseID); err != nil {
		AbortWithError(c, err)
		return
	}

	links, err := s.linkSvc.ListByCase(c.Request.Context(), caseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (s *Server) RevokeLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	link, err := s.linkSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	// The link's case must be visible to the caller; a foreign tenant's
	// link reads as absent.
	if _, err := s.caseSvc.GetByID(c.Request.Context(), link.CaseID); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.linkSvc.Revoke(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
