package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/scope"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, tc *TaxCase) error
	Update(ctx context.Context, tc *TaxCase) error
	Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*TaxCase, error)
	List(ctx context.Context, sc scope.Scope, filter ListCaseRequest, limit int, afterID snowflake.ID) ([]*TaxCase, error)
	EnsureEngagement(ctx context.Context, clientID snowflake.ID, taxYear int, newID snowflake.ID) (*Engagement, error)
}
