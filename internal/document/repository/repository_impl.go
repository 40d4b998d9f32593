package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/document/domain"
	"github.com/taxdesk/taxdesk/internal/scope"
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

func (r *repository) Insert(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) Update(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *repository) Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Scopes(sc.Documents()).
		First(&doc, "documents.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Rows outside the caller's scope read as absent, not forbidden.
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) ListByCase(ctx context.Context, sc scope.Scope, caseID snowflake.ID) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Scopes(sc.Documents()).
		Where("documents.case_id = ?", caseID).
		Order("documents.id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) KeyExists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("storage_key = ?", key).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&domain.Document{}, "id = ?", id).Error
}
