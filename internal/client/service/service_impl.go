package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/client/domain"
	"github.com/taxdesk/taxdesk/internal/clock"
	orgdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"github.com/taxdesk/taxdesk/internal/scope"
	"github.com/taxdesk/taxdesk/pkg/db/pagination"
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
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (*domain.Client, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok || principal.OrgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.LegalName)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		OrgID:     principal.OrgID,
		LegalName: name,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListClientRequest) (domain.ListClientResponse, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return domain.ListClientResponse{}, domain.ErrInvalidOrganization
	}
	sc := scope.ForPrincipal(principal)

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var afterID snowflake.ID
	if token := strings.TrimSpace(req.PageToken); token != "" {
		parsed, err := snowflake.ParseString(token)
		if err != nil {
			return domain.ListClientResponse{}, domain.ErrInvalidID
		}
		afterID = parsed
	}

	rows, err := s.repo.List(ctx, sc, strings.TrimSpace(req.Search), pageSize, afterID)
	if err != nil {
		return domain.ListClientResponse{}, err
	}

	info := pagination.BuildCursorPageInfo(rows, pageSize, func(row *domain.Client) string {
		return row.ID.String()
	})
	resp := domain.ListClientResponse{PageInfo: *info}
	if resp.HasMore {
		rows = rows[:pageSize]
	}

	resp.Clients = make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		resp.Clients = append(resp.Clients, *row)
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Client, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, scope.ForPrincipal(principal), id)
}

func (s *Service) Assign(ctx context.Context, clientID, staffID snowflake.ID) (*domain.Assignment, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok || principal.OrgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if clientID == 0 || staffID == 0 {
		return nil, domain.ErrInvalidID
	}

	// Assignment management requires org-wide visibility of the client.
	if _, err := s.repo.Get(ctx, scope.ForPrincipal(principal), clientID); err != nil {
		return nil, err
	}
	// The staff member must belong to the same organization; a foreign or
	// deactivated staff id reads as absent.
	ok, err := s.repo.StaffInOrg(ctx, staffID, principal.OrgID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, orgdomain.ErrStaffNotFound
	}

	assignment := domain.Assignment{
		ID:         s.genID.Generate(),
		ClientID:   clientID,
		StaffID:    staffID,
		AssignedBy: principal.StaffID,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.InsertAssignment(ctx, &assignment); err != nil {
		return nil, err
	}

	s.log.Info("client assigned",
		zap.String("client_id", clientID.String()),
		zap.String("staff_id", staffID.String()),
	)
	return &assignment, nil
}

func (s *Service) Unassign(ctx context.Context, clientID, staffID snowflake.ID) error {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok || principal.OrgID == 0 {
		return domain.ErrInvalidOrganization
	}

	if _, err := s.repo.Get(ctx, scope.ForPrincipal(principal), clientID); err != nil {
		return err
	}

	affected, err := s.repo.DeleteAssignment(ctx, clientID, staffID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (s *Service) ListAssignments(ctx context.Context, clientID snowflake.ID) ([]domain.Assignment, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	if _, err := s.repo.Get(ctx, scope.ForPrincipal(principal), clientID); err != nil {
		return nil, err
	}
	return s.repo.ListAssignments(ctx, clientID)
}
