package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Entry is one action to record. Org and actor are derived from the
// caller's principal when left zero.
type Entry struct {
	Action     string
	TargetType string
	TargetID   snowflake.ID
	Metadata   map[string]any
}

type Service interface {
	// Record appends an entry. Secret-bearing metadata values are masked
	// before persistence.
	Record(ctx context.Context, e Entry) error
	// ListByTarget returns the newest entries for one record, capped at
	// limit.
	ListByTarget(ctx context.Context, targetType string, targetID snowflake.ID, limit int) ([]AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, entry *AuditLog) error
	ListByTarget(ctx context.Context, orgID snowflake.ID, targetType string, targetID snowflake.ID, limit int) ([]AuditLog, error)
}

var (
	ErrInvalidAction       = errors.New("invalid_action")
	ErrInvalidTarget       = errors.New("invalid_target")
	ErrInvalidOrganization = errors.New("invalid_organization")
)
