// Package domain contains the case message thread models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	AuthorStaff  = "STAFF"
	AuthorClient = "CLIENT"
)

// Message is one entry in a case's thread between staff and the client.
// Client-authored messages arrive through the portal.
type Message struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"org_id"`
	CaseID     snowflake.ID `gorm:"not null;index" json:"case_id"`
	AuthorKind string       `gorm:"type:text;not null" json:"author_kind"`
	AuthorID   snowflake.ID `gorm:"column:author_id" json:"author_id"`
	Body       string       `gorm:"type:text;not null" json:"body"`
	ReadAt     *time.Time   `gorm:"column:read_at" json:"read_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Message) TableName() string { return "messages" }
