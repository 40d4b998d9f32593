package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListMessages(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	msgs, err := s.messageSvc.List(c.Request.Context(), caseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (s *Server) PostMessage(c *gin.Context) {
	caseID, ok := pathID(c, "id")
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

	msg, err := s.messageSvc.Post(c.Request.Context(), caseID, req.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (s *Server) MarkMessageRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.messageSvc.MarkRead(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
