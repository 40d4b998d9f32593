package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetStaffByIdentity(ctx context.Context, identityID string) (*StaffMember, error)
	GetStaff(ctx context.Context, orgID, staffID snowflake.ID) (*StaffMember, error)
	CreateStaff(ctx context.Context, staff *StaffMember) error
	UpdateStaff(ctx context.Context, staff *StaffMember) error
	ListStaff(ctx context.Context, orgID snowflake.ID) ([]StaffMember, error)
	CreateInvite(ctx context.Context, invite *StaffInvite) error
}
