package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/organization/domain"
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

func (r *repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) GetOrganization(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) GetStaffByIdentity(ctx context.Context, identityID string) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	err := r.db.WithContext(ctx).First(&staff, "identity_id = ?", identityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) GetStaff(ctx context.Context, orgID, staffID snowflake.ID) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	err := r.db.WithContext(ctx).First(&staff, "id = ? AND org_id = ?", staffID, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) CreateStaff(ctx context.Context, staff *domain.StaffMember) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *repository) UpdateStaff(ctx context.Context, staff *domain.StaffMember) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

func (r *repository) ListStaff(ctx context.Context, orgID snowflake.ID) ([]domain.StaffMember, error) {
	var staff []domain.StaffMember
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *repository) CreateInvite(ctx context.Context, invite *domain.StaffInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}
