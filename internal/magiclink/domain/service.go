package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Issue creates a new link for (case, type), deactivating any active
	// links of the same pair in the same transaction.
	Issue(ctx context.Context, req IssueRequest) (*IssueResponse, error)
	// Validate checks a raw token in order: exists, active, not expired,
	// form not locked. Failures map to the sentinel errors below. A
	// successful validation bumps the usage counter best-effort.
	Validate(ctx context.Context, token string) (*Validation, error)
	GetByID(ctx context.Context, linkID snowflake.ID) (*MagicLink, error)
	Revoke(ctx context.Context, linkID snowflake.ID) error
	ListByCase(ctx context.Context, caseID snowflake.ID) ([]MagicLink, error)

	GetForm(ctx context.Context, token string) (*FormSubmission, error)
	UpdateForm(ctx context.Context, token string, payload map[string]any) (*FormSubmission, error)
	// LockForm locks the case's form of the given type and deactivates that
	// type's active links atomically.
	LockForm(ctx context.Context, caseID snowflake.ID, formType string) error
}

type IssueRequest struct {
	CaseID snowflake.ID
	Type   LinkType
	// TTL overrides the configured per-type TTL; nil uses configuration,
	// zero duration means the link never expires.
	TTL *time.Duration
}

type IssueResponse struct {
	Link      MagicLink  `json:"link"`
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type Validation struct {
	Link   MagicLink
	CaseID snowflake.ID
}

// Validation failure sentinels. The portal renders distinct messaging per
// code, so callers must not collapse them.
var (
	ErrInvalidToken    = errors.New("INVALID_TOKEN")
	ErrLinkDeactivated = errors.New("LINK_DEACTIVATED")
	ErrExpiredToken    = errors.New("EXPIRED_TOKEN")
	ErrFormLocked      = errors.New("FORM_LOCKED")
)

var (
	ErrInvalidType         = errors.New("invalid_link_type")
	ErrInvalidCase         = errors.New("invalid_case")
	ErrLinkNotFound        = errors.New("link_not_found")
	ErrFormNotFound        = errors.New("form_not_found")
	ErrNotAFormLink        = errors.New("not_a_form_link")
	ErrInvalidOrganization = errors.New("invalid_organization")
)
