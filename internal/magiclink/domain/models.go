// Package domain contains the magic-link and portal-form models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// LinkType identifies what a magic link grants access to.
type LinkType string

const (
	LinkTypePortal      LinkType = "PORTAL"
	LinkTypeScheduleC   LinkType = "SCHEDULE_C"
	LinkTypeScheduleE   LinkType = "SCHEDULE_E"
	LinkTypeDraftReturn LinkType = "DRAFT_RETURN"
)

func ValidLinkType(t LinkType) bool {
	switch t {
	case LinkTypePortal, LinkTypeScheduleC, LinkTypeScheduleE, LinkTypeDraftReturn:
		return true
	default:
		return false
	}
}

// FormType returns the expense-form type a link of type t gates, if any.
func (t LinkType) FormType() (string, bool) {
	switch t {
	case LinkTypeScheduleC, LinkTypeScheduleE:
		return string(t), true
	default:
		return "", false
	}
}

// MagicLink is an opaque bearer token granting unauthenticated, case-scoped
// access. At most one link per (case, type) is active at any time; issuing a
// new one supersedes the old inside a single transaction, and the partial
// unique index on (case_id, type) where active enforces the invariant when
// two issuances race. A nil ExpiresAt means the link never expires.
type MagicLink struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	CaseID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_magic_links_active,priority:1,where:active" json:"case_id"`
	Type   LinkType     `gorm:"type:text;not null;uniqueIndex:ux_magic_links_active,priority:2" json:"type"`
	Token  string       `gorm:"type:text;not null;uniqueIndex:ux_magic_links_token" json:"-"`

	Active     bool         `gorm:"not null;default:true;index" json:"active"`
	ExpiresAt  *time.Time   `gorm:"column:expires_at" json:"expires_at"`
	UseCount   int64        `gorm:"not null;default:0" json:"use_count"`
	LastUsedAt *time.Time   `gorm:"column:last_used_at" json:"last_used_at"`
	CreatedBy  snowflake.ID `gorm:"column:created_by" json:"created_by"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MagicLink) TableName() string { return "magic_links" }

const (
	FormStatusOpen      = "OPEN"
	FormStatusSubmitted = "SUBMITTED"
	FormStatusLocked    = "LOCKED"
)

// FormSubmission is a client-filled expense form reached through a
// SCHEDULE_C or SCHEDULE_E link. Locking it deactivates that type's links
// for the case in the same transaction, so a locked form is never reachable.
type FormSubmission struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	CaseID    snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_form_case_type,priority:1" json:"case_id"`
	FormType  string            `gorm:"type:text;not null;uniqueIndex:ux_form_case_type,priority:2" json:"form_type"`
	Status    string            `gorm:"type:text;not null" json:"status"`
	Payload   datatypes.JSONMap `gorm:"not null;default:'{}'" json:"payload"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (FormSubmission) TableName() string { return "form_submissions" }
