package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (*Client, error)
	List(ctx context.Context, req ListClientRequest) (ListClientResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Client, error)
	Assign(ctx context.Context, clientID, staffID snowflake.ID) (*Assignment, error)
	Unassign(ctx context.Context, clientID, staffID snowflake.ID) error
	ListAssignments(ctx context.Context, clientID snowflake.ID) ([]Assignment, error)
}

type CreateClientRequest struct {
	LegalName string
	Email     string
	Phone     string
}

type ListClientRequest struct {
	pagination.Pagination
	Search string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []Client `json:"clients"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("client_not_found")
	ErrDuplicateAssignment = errors.New("duplicate_assignment")
	ErrAssignmentNotFound  = errors.New("assignment_not_found")
)
