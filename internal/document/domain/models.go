// Package domain contains the stored-document models and the storage-key
// collision resolver.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Document categories assigned at upload or by later classification.
const (
	CategoryW2      = "W2"
	Category1099    = "1099"
	CategoryReceipt = "RECEIPT"
	CategoryPriorYr = "PRIOR_YEAR_RETURN"
	CategoryOther   = "OTHER"
)

const (
	DocStatusUploaded   = "UPLOADED"
	DocStatusClassified = "CLASSIFIED"
	DocStatusArchived   = "ARCHIVED"
)

// Document is a stored object belonging to a tax case. StorageKey is the
// object's location in the bucket and is globally unique; the database row
// is the single source of truth for which key is current.
type Document struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"org_id"`
	CaseID      snowflake.ID `gorm:"not null;index" json:"case_id"`
	StorageKey  string       `gorm:"type:text;not null;uniqueIndex:ux_documents_storage_key" json:"storage_key"`
	DisplayName string       `gorm:"type:text;not null" json:"display_name"`
	Extension   string       `gorm:"type:text;not null" json:"extension"`
	ContentType string       `gorm:"type:text" json:"content_type"`
	SizeBytes   int64        `gorm:"not null;default:0" json:"size_bytes"`
	Category    string       `gorm:"type:text;not null" json:"category"`
	Status      string       `gorm:"type:text;not null" json:"status"`
	UploadedBy  snowflake.ID `gorm:"column:uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }
