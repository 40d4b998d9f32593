package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/scope"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, client *Client) error
	List(ctx context.Context, sc scope.Scope, search string, limit int, afterID snowflake.ID) ([]*Client, error)
	Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*Client, error)
	// StaffInOrg reports whether the staff member exists, is active, and
	// belongs to the organization.
	StaffInOrg(ctx context.Context, staffID, orgID snowflake.ID) (bool, error)
	InsertAssignment(ctx context.Context, assignment *Assignment) error
	DeleteAssignment(ctx context.Context, clientID, staffID snowflake.ID) (int64, error)
	ListAssignments(ctx context.Context, clientID snowflake.ID) ([]Assignment, error)
}
