package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/client/domain"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/scope"
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

func (r *repository) Insert(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) List(ctx context.Context, sc scope.Scope, search string, limit int, afterID snowflake.ID) ([]*domain.Client, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Scopes(sc.Clients()).
		Order("clients.id ASC").
		Limit(limit + 1)

	if search != "" {
		tx = tx.Where("clients.legal_name LIKE ?", "%"+search+"%")
	}
	if afterID != 0 {
		tx = tx.Where("clients.id > ?", afterID)
	}

	var clients []*domain.Client
	if err := tx.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *repository) Get(ctx context.Context, sc scope.Scope, id snowflake.ID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Scopes(sc.Clients()).
		First(&client, "clients.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Rows outside the caller's scope read as absent, not forbidden.
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) StaffInOrg(ctx context.Context, staffID, orgID snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&orgdomain.StaffMember{}).
		Where("id = ? AND org_id = ? AND active", staffID, orgID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) InsertAssignment(ctx context.Context, assignment *domain.Assignment) error {
	err := r.db.WithContext(ctx).Create(assignment).Error
	if dbpkg.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateAssignment
	}
	return err
}

func (r *repository) DeleteAssignment(ctx context.Context, clientID, staffID snowflake.ID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("client_id = ? AND staff_id = ?", clientID, staffID).
		Delete(&domain.Assignment{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListAssignments(ctx context.Context, clientID snowflake.ID) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
