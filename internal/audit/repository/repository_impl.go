package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/audit/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByTarget(ctx context.Context, orgID snowflake.ID, targetType string, targetID snowflake.ID, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := r.db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Where("audit_logs.org_id = ?", orgID).
		Where("audit_logs.target_type = ? AND audit_logs.target_id = ?", targetType, targetID).
		Order("audit_logs.id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
