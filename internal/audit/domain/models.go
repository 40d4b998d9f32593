// Package domain contains the case activity log models. Entries record who
// did what to which record; they are append-only and never mutated.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActorStaff  = "STAFF"
	ActorClient = "CLIENT"
	ActorSystem = "SYSTEM"
)

const (
	TargetCase     = "case"
	TargetDocument = "document"
	TargetLink     = "link"
)

// AuditLog is one recorded action against a tenant-owned record.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index" json:"org_id"`
	ActorKind  string            `gorm:"type:text;not null" json:"actor_kind"`
	ActorID    snowflake.ID      `gorm:"column:actor_id" json:"actor_id"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	TargetType string            `gorm:"type:text;not null;index:ix_audit_target,priority:1" json:"target_type"`
	TargetID   snowflake.ID      `gorm:"not null;index:ix_audit_target,priority:2" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
