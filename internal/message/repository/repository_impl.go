package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/message/domain"
	"github.com/taxdesk/taxdesk/internal/scope"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *repository) ListByCase(ctx context.Context, sc scope.Scope, caseID snowflake.ID) ([]domain.Message, error) {
	var msgs []domain.Message
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Scopes(sc.Messages()).
		Where("messages.case_id = ?", caseID).
		Order("messages.id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *repository) MarkRead(ctx context.Context, sc scope.Scope, id snowflake.ID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Scopes(sc.Messages()).
		Where("messages.id = ?", id).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}
