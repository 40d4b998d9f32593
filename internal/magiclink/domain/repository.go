package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, link *MagicLink) error
	FindByToken(ctx context.Context, token string) (*MagicLink, error)
	FindByID(ctx context.Context, id snowflake.ID) (*MagicLink, error)
	// DeactivateActive clears the active flag on every active link of the
	// (case, type) pair and returns how many rows changed.
	DeactivateActive(ctx context.Context, caseID snowflake.ID, linkType LinkType) (int64, error)
	Deactivate(ctx context.Context, id snowflake.ID) error
	// RecordUse bumps the usage counter and last-used stamp. Not atomic with
	// the validation read; a lost increment under concurrency is tolerated.
	RecordUse(ctx context.Context, id snowflake.ID, at time.Time) error
	ListByCase(ctx context.Context, caseID snowflake.ID) ([]MagicLink, error)

	GetForm(ctx context.Context, caseID snowflake.ID, formType string) (*FormSubmission, error)
	EnsureForm(ctx context.Context, form *FormSubmission) (*FormSubmission, error)
	UpdateForm(ctx context.Context, form *FormSubmission) error
}
