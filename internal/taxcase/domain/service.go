package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateCaseRequest) (*TaxCase, error)
	List(ctx context.Context, req ListCaseRequest) (ListCaseResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*TaxCase, error)
	// Transition validates the status change against the state machine,
	// stamps completion timestamps, and persists the result. On rejection it
	// returns *InvalidTransitionError.
	Transition(ctx context.Context, id snowflake.ID, target Status) (*TaxCase, error)
	NextStatuses(ctx context.Context, id snowflake.ID) ([]Status, error)
}

type CreateCaseRequest struct {
	ClientID snowflake.ID
	TaxYear  int
}

type ListCaseRequest struct {
	pagination.Pagination
	ClientID snowflake.ID
	Status   Status
}

type ListCaseResponse struct {
	pagination.PageInfo
	Cases []TaxCase `json:"cases"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidClient       = errors.New("invalid_client")
	ErrInvalidTaxYear      = errors.New("invalid_tax_year")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("case_not_found")
)
