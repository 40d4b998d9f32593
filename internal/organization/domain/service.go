package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// Staff roles within the firm.
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
	RoleCPA   = "CPA"

	// Roles within the organization itself.
	OrgRoleAdmin  = "ADMIN"
	OrgRoleMember = "MEMBER"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleCPA:
		return true
	default:
		return false
	}
}

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*OrganizationResponse, error)
	ListStaff(ctx context.Context) ([]StaffResponse, error)
	Invite(ctx context.Context, req InviteRequest) (*StaffInvite, error)
	UpdateStaffRole(ctx context.Context, staffID snowflake.ID, role string) error
	DeactivateStaff(ctx context.Context, staffID snowflake.ID) error
}

type CreateOrganizationRequest struct {
	Name         string
	SupportEmail string
}

type InviteRequest struct {
	Email string
	Role  string
}

type OrganizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	SupportEmail string `json:"support_email"`
}

type StaffResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	OrgRole     string    `json:"org_role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrStaffNotFound       = errors.New("staff_not_found")
	ErrNotFound            = errors.New("organization_not_found")
	ErrForbidden           = errors.New("forbidden")
)
