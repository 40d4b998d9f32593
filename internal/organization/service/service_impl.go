package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:           s.genID.Generate(),
		Name:         name,
		Slug:         slugify(name),
		SupportEmail: strings.TrimSpace(req.SupportEmail),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateOrganization(ctx, &org); err != nil {
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)

	return &domain.OrganizationResponse{
		ID:           org.ID.String(),
		Name:         org.Name,
		Slug:         org.Slug,
		SupportEmail: org.SupportEmail,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.OrganizationResponse, error) {
	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.OrganizationResponse{
		ID:           org.ID.String(),
		Name:         org.Name,
		Slug:         org.Slug,
		SupportEmail: org.SupportEmail,
	}, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]domain.StaffResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	members, err := s.repo.ListStaff(ctx, orgID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.StaffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, domain.StaffResponse{
			ID:          m.ID.String(),
			Email:       m.Email,
			DisplayName: m.DisplayName,
			Role:        m.Role,
			OrgRole:     m.OrgRole,
			Active:      m.Active,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) Invite(ctx context.Context, req domain.InviteRequest) (*domain.StaffInvite, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok || principal.OrgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	invite := domain.StaffInvite{
		ID:        s.genID.Generate(),
		OrgID:     principal.OrgID,
		Email:     email,
		Role:      req.Role,
		Status:    domain.InviteStatusPending,
		InvitedBy: principal.StaffID,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateInvite(ctx, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *Service) UpdateStaffRole(ctx context.Context, staffID snowflake.ID, role string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOrganization
	}
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}

	staff, err := s.repo.GetStaff(ctx, orgID, staffID)
	if err != nil {
		return err
	}

	staff.Role = role
	staff.UpdatedAt = s.clock.Now()
	return s.repo.UpdateStaff(ctx, staff)
}

func (s *Service) DeactivateStaff(ctx context.Context, staffID snowflake.ID) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOrganization
	}

	staff, err := s.repo.GetStaff(ctx, orgID, staffID)
	if err != nil {
		return err
	}

	staff.Active = false
	staff.UpdatedAt = s.clock.Now()
	return s.repo.UpdateStaff(ctx, staff)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
