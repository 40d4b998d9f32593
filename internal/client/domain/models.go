// Package domain contains persistence models for clients and staff
// assignments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a taxpayer engagement subject owned by one organization.
type Client struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID      `gorm:"not null;index" json:"org_id"`
	LegalName string            `gorm:"type:text;not null" json:"legal_name"`
	Email     string            `gorm:"type:text" json:"email"`
	Phone     string            `gorm:"type:text" json:"phone"`
	Metadata  datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// Assignment links a staff member to a client. The (client, staff) pair is
// unique; a second insert is a conflict, never a silent no-op.
type Assignment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_client_staff,priority:1" json:"client_id"`
	StaffID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_client_staff,priority:2" json:"staff_id"`
	AssignedBy snowflake.ID `gorm:"column:assigned_by;not null" json:"assigned_by"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Assignment) TableName() string { return "client_assignments" }
