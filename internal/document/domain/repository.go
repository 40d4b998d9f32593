package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/scope"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document) error
	Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*Document, error)
	ListByCase(ctx context.Context, sc scope.Scope, caseID snowflake.ID) ([]Document, error)
	// KeyExists is the uniqueness oracle for the rename resolver; it checks
	// the storage-key column, not the bucket.
	KeyExists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
