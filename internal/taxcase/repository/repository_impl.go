package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/scope"
	"github.com/taxdesk/taxdesk/internal/taxcase/domain"
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

func (r *repository) Insert(ctx context.Context, tc *domain.TaxCase) error {
	return r.db.WithContext(ctx).Create(tc).Error
}

func (r *repository) Update(ctx context.Context, tc *domain.TaxCase) error {
	return r.db.WithContext(ctx).Save(tc).Error
}

func (r *repository) Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*domain.TaxCase, error) {
	var tc domain.TaxCase
	err := r.db.WithContext(ctx).
		Scopes(sc.Cases()).
		First(&tc, "tax_cases.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *repository) List(ctx context.Context, sc scope.Scope, filter domain.ListCaseRequest, limit int, afterID snowflake.ID) ([]*domain.TaxCase, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.TaxCase{}).
		Scopes(sc.Cases()).
		Order("tax_cases.id ASC").
		Limit(limit + 1)

	if filter.ClientID != 0 {
		tx = tx.Where("tax_cases.client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		tx = tx.Where("tax_cases.status = ?", filter.Status)
	}
	if afterID != 0 {
		tx = tx.Where("tax_cases.id > ?", afterID)
	}

	var cases []*domain.TaxCase
	if err := tx.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// EnsureEngagement returns the engagement for (client, taxYear), creating it
// when missing. A concurrent create loses the unique-index race and falls
// back to reading the winner's row.
func (r *repository) EnsureEngagement(ctx context.Context, clientID snowflake.ID, taxYear int, newID snowflake.ID) (*domain.Engagement, error) {
	var existing domain.Engagement
	err := r.db.WithContext(ctx).
		First(&existing, "client_id = ? AND tax_year = ?", clientID, taxYear).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	engagement := domain.Engagement{
		ID:        newID,
		ClientID:  clientID,
		TaxYear:   taxYear,
		CreatedAt: time.Now().UTC(),
	}
	createErr := r.db.WithContext(ctx).Create(&engagement).Error
	if createErr == nil {
		return &engagement, nil
	}
	if dbpkg.IsDuplicateKeyErr(createErr) {
		if err := r.db.WithContext(ctx).
			First(&existing, "client_id = ? AND tax_year = ?", clientID, taxYear).Error; err == nil {
			return &existing, nil
		}
	}
	return nil, createErr
}
