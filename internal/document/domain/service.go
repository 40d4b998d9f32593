package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*Document, error)
	List(ctx context.Context, caseID snowflake.ID) ([]Document, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Document, error)
	// Rename resolves a fresh collision-free storage key for the new name,
	// copies the object, persists the new key, then deletes the old object.
	// A failed delete after the copy and persist succeed leaves a tolerated
	// orphan; the database row decides which key is current.
	Rename(ctx context.Context, id snowflake.ID, newName string) (*Document, error)
	// DownloadURL returns a short-lived presigned URL for the document.
	DownloadURL(ctx context.Context, id snowflake.ID) (string, error)
	Classify(ctx context.Context, id snowflake.ID, category string) (*Document, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type UploadRequest struct {
	CaseID      snowflake.ID
	DisplayName string
	Extension   string
	ContentType string
	Category    string
	SizeBytes   int64
	Body        io.Reader
}

var (
	ErrInvalidCase     = errors.New("invalid_case")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrNotFound        = errors.New("document_not_found")
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryW2, Category1099, CategoryReceipt, CategoryPriorYr, CategoryOther:
		return true
	default:
		return false
	}
}
