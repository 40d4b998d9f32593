package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/scope"
)

type Repository interface {
	Insert(ctx context.Context, msg *Message) error
	ListByCase(ctx context.Context, sc scope.Scope, caseID snowflake.ID) ([]Message, error)
	MarkRead(ctx context.Context, sc scope.Scope, id snowflake.ID, at time.Time) (int64, error)
}
