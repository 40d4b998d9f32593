package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Post appends a staff message to the case thread.
	Post(ctx context.Context, caseID snowflake.ID, body string) (*Message, error)
	// PostFromPortal appends a client message; the caller has already
	// validated the magic link gating the case.
	PostFromPortal(ctx context.Context, orgID, caseID snowflake.ID, body string) (*Message, error)
	List(ctx context.Context, caseID snowflake.ID) ([]Message, error)
	MarkRead(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidCase = errors.New("invalid_case")
	ErrEmptyBody   = errors.New("empty_body")
	ErrNotFound    = errors.New("message_not_found")
)
