package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	magiclinkdomain "github.com/taxdesk/taxdesk/internal/magiclink/domain"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/scope"
)

// portalError writes the per-code body the portal frontend keys its
// messaging on. Codes are never collapsed into a generic failure.
func portalError(c *gin.Context, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, magiclinkdomain.ErrInvalidToken):
		status, code = http.StatusNotFound, "INVALID_TOKEN"
	case errors.Is(err, magiclinkdomain.ErrLinkDeactivated):
		status, code = http.StatusGone, "LINK_DEACTIVATED"
	case errors.Is(err, magiclinkdomain.ErrExpiredToken):
		status, code = http.StatusGone, "EXPIRED_TOKEN"
	case errors.Is(err, magiclinkdomain.ErrFormLocked):
		status, code = http.StatusLocked, "FORM_LOCKED"
	case errors.Is(err, magiclinkdomain.ErrNotAFormLink):
		status, code = http.StatusBadRequest, "NOT_A_FORM_LINK"
	default:
		AbortWithError(c, err)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"valid": false, "error": code})
}

// The portal runs without a principal; the validated token is the
// authorization, so reads are pinned to the link's case instead of a scope.
func portalScope() scope.Scope {
	return scope.Scope{Kind: scope.KindUnrestricted}
}

func (s *Server) validatePortalToken(c *gin.Context) (*magiclinkdomain.Validation, bool) {
	v, err := s.linkSvc.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		portalError(c, err)
		return nil, false
	}
	return v, true
}

func (s *Server) PortalValidateLink(c *gin.Context) {
	v, ok := s.validatePortalToken(c)
	if !ok {
		return
	}

	tc, err := s.caseRepo.Get(c.Request.Context(), portalScope(), v.CaseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{
		"valid":     true,
		"type":      v.Link.Type,
		"case_id":   v.CaseID.String(),
		"status":    tc.Status,
		"org_name":  "",
		"use_count": v.Link.UseCount,
	}
	if org, err := s.lookupOrg(c, tc.OrgID); err == nil {
		resp["org_name"] = org.Name
	}
	c.JSON(http.StatusOK, resp)
}

// lookupOrg serves organization reads through the TTL cache; the database
// stays authoritative.
func (s *Server) lookupOrg(c *gin.Context, orgID snowflake.ID) (*orgdomain.Organization, error) {
	if org, ok := s.orgCache.Get(orgID); ok {
		return org, nil
	}
	org, err := s.orgRepo.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		return nil, err
	}
	s.orgCache.Set(org)
	return org, nil
}

func (s *Server) PortalGetForm(c *gin.Context) {
	form, err := s.linkSvc.GetForm(c.Request.Context(), c.Param("token"))
	if err != nil {
		portalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (s *Server) PortalUpdateForm(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	form, err := s.linkSvc.UpdateForm(c.Request.Context(), c.Param("token"), payload)
	if err != nil {
		portalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (s *Server) PortalLockForm(c *gin.Context) {
	v, ok := s.validatePortalToken(c)
	if !ok {
		return
	}
	formType, isForm := v.Link.Type.FormType()
	if !isForm {
		portalError(c, magiclinkdomain.ErrNotAFormLink)
		return
	}

	if err := s.linkSvc.LockForm(c.Request.Context(), v.CaseID, formType); err != nil {
		portalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) PortalListDocuments(c *gin.Context) {
	v, ok := s.validatePortalToken(c)
	if !ok {
		return
	}

	docs, err := s.docRepo.ListByCase(c.Request.Context(), portalScope(), v.CaseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) PortalListMessages(c *gin.Context) {
	v, ok := s.validatePortalToken(c)
	if !ok {
		return
	}

	msgs, err := s.msgRepo.ListByCase(c.Request.Context(), portalScope(), v.CaseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (s *Server) PortalPostMessage(c *gin.Context) {
	v, ok := s.validatePortalToken(c)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tc, err := s.caseRepo.Get(c.Request.Context(), portalScope(), v.CaseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	msg, err := s.messageSvc.PostFromPortal(c.Request.Context(), tc.OrgID, v.CaseID, req.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
