// Package domain contains the tax case workflow models and the status state
// machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Engagement groups a client's cases for one tax year.
type Engagement struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID  snowflake.ID `gorm:"not null;index;uniqueIndex:ux_engagement_year,priority:1" json:"client_id"`
	TaxYear   int          `gorm:"not null;uniqueIndex:ux_engagement_year,priority:2" json:"tax_year"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Engagement) TableName() string { return "engagements" }

// TaxCase carries a client's return through the preparation workflow.
// EntryCompletedAt and FiledAt are stamped by the transition that reaches
// the respective status.
type TaxCase struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID `gorm:"not null;index" json:"org_id"`
	ClientID         snowflake.ID `gorm:"not null;index" json:"client_id"`
	EngagementID     snowflake.ID `gorm:"index" json:"engagement_id"`
	Status           Status       `gorm:"type:text;not null" json:"status"`
	EntryCompletedAt *time.Time   `gorm:"column:entry_completed_at" json:"entry_completed_at"`
	FiledAt          *time.Time   `gorm:"column:filed_at" json:"filed_at"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TaxCase) TableName() string { return "tax_cases" }
