package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/magiclink/domain"
	dbpkg "github.com/taxdesk/taxdesk/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, link *domain.MagicLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) FindByToken(ctx context.Context, token string) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.db.WithContext(ctx).First(&link, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.MagicLink, error) {
	var link domain.MagicLink
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) DeactivateActive(ctx context.Context, caseID snowflake.ID, linkType domain.LinkType) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.MagicLink{}).
		Where("case_id = ? AND type = ? AND active", caseID, linkType).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) Deactivate(ctx context.Context, id snowflake.ID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.MagicLink{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (r *repository) RecordUse(ctx context.Context, id snowflake.ID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.MagicLink{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"use_count":    gorm.Expr("use_count + 1"),
			"last_used_at": at,
			"updated_at":   at,
		}).Error
}

func (r *repository) ListByCase(ctx context.Context, caseID snowflake.ID) ([]domain.MagicLink, error) {
	var links []domain.MagicLink
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) GetForm(ctx context.Context, caseID snowflake.ID, formType string) (*domain.FormSubmission, error) {
	var form domain.FormSubmission
	err := r.db.WithContext(ctx).
		First(&form, "case_id = ? AND form_type = ?", caseID, formType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// EnsureForm creates the form when missing; the unique (case, type) index
// settles concurrent creation in favor of the first writer.
func (r *repository) EnsureForm(ctx context.Context, form *domain.FormSubmission) (*domain.FormSubmission, error) {
	existing, err := r.GetForm(ctx, form.CaseID, form.FormType)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrFormNotFound) {
		return nil, err
	}

	createErr := r.db.WithContext(ctx).Create(form).Error
	if createErr == nil {
		return form, nil
	}
	if dbpkg.IsDuplicateKeyErr(createErr) {
		return r.GetForm(ctx, form.CaseID, form.FormType)
	}
	return nil, createErr
}

func (r *repository) UpdateForm(ctx context.Context, form *domain.FormSubmission) error {
	return r.db.WithContext(ctx).Save(form).Error
}
