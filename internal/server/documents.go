package server

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/taxdesk/taxdesk/internal/audit/domain"
	"github.com/taxdesk/taxdesk/internal/document/domain"
)

const maxUploadBytes = 25 * 1024 * 1024

func (s *Server) ListDocuments(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	docs, err := s.documentSvc.List(c.Request.Context(), caseID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) UploadDocument(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "a file part is required"))
		return
	}
	if header.Size > maxUploadBytes {
		AbortWithError(c, newValidationError("file", "file_too_large", "file exceeds the upload limit"))
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	name := c.PostForm("display_name")
	if name == "" {
		name = header.Filename
	}

	doc, err := s.documentSvc.Upload(c.Request.Context(), domain.UploadRequest{
		CaseID:      caseID,
		DisplayName: name,
		Extension:   path.Ext(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Category:    c.PostForm("category"),
		SizeBytes:   header.Size,
		Body:        file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		Action:     "document.uploaded",
		TargetType: auditdomain.TargetCase,
		TargetID:   caseID,
		Metadata: map[string]any{
			"document_id":  doc.ID.String(),
			"display_name": doc.DisplayName,
		},
	})

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func (s *Server) RenameDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.documentSvc.Rename(c.Request.Context(), id, req.DisplayName)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (s *Server) ClassifyDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := s.documentSvc.Classify(c.Request.Context(), id, req.Category)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (s *Server) DownloadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	url, err := s.documentSvc.DownloadURL(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.documentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
