package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/taxdesk/taxdesk/internal/client/domain"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"github.com/taxdesk/taxdesk/internal/scope"
	"github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"github.com/taxdesk/taxdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	clientRepo clientdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("taxcase.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCaseRequest) (*domain.TaxCase, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok || principal.OrgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if req.ClientID == 0 {
		return nil, domain.ErrInvalidClient
	}
	if req.TaxYear < 2000 || req.TaxYear > 2100 {
		return nil, domain.ErrInvalidTaxYear
	}

	// The client must be visible to the caller; an unknown or foreign client
	// reads as absent.
	client, err := s.clientRepo.Get(ctx, scope.ForPrincipal(principal), req.ClientID)
	if err != nil {
		return nil, domain.ErrInvalidClient
	}

	engagement, err := s.repo.EnsureEngagement(ctx, client.ID, req.TaxYear, s.genID.Generate())
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tc := domain.TaxCase{
		ID:           s.genID.Generate(),
		OrgID:        client.OrgID,
		ClientID:     client.ID,
		EngagementID: engagement.ID,
		Status:       domain.StatusIntake,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, &tc); err != nil {
		return nil, err
	}

	s.log.Info("case created",
		zap.String("case_id", tc.ID.String()),
		zap.String("client_id", client.ID.String()),
		zap.Int("tax_year", req.TaxYear),
	)
	return &tc, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCaseRequest) (domain.ListCaseResponse, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return domain.ListCaseResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var afterID snowflake.ID
	if token := strings.TrimSpace(req.PageToken); token != "" {
		parsed, err := snowflake.ParseString(token)
		if err != nil {
			return domain.ListCaseResponse{}, domain.ErrInvalidID
		}
		afterID = parsed
	}

	rows, err := s.repo.List(ctx, scope.ForPrincipal(principal), req, pageSize, afterID)
	if err != nil {
		return domain.ListCaseResponse{}, err
	}

	info := pagination.BuildCursorPageInfo(rows, pageSize, func(row *domain.TaxCase) string {
		return row.ID.String()
	})
	resp := domain.ListCaseResponse{PageInfo: *info}
	if resp.HasMore {
		rows = rows[:pageSize]
	}

	resp.Cases = make([]domain.TaxCase, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		resp.Cases = append(resp.Cases, *row)
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.TaxCase, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.repo.Get(ctx, scope.ForPrincipal(principal), id)
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, target domain.Status) (*domain.TaxCase, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !domain.ValidStatus(target) {
		return nil, domain.ErrInvalidStatus
	}

	tc, err := s.repo.Get(ctx, scope.ForPrincipal(principal), id)
	if err != nil {
		return nil, err
	}

	if target == tc.Status {
		// No-op by convention; nothing to persist.
		return tc, nil
	}

	if !domain.IsValidTransition(tc.Status, target) {
		return nil, domain.NewInvalidTransitionError(tc.Status, target)
	}

	now := s.clock.Now()
	tc.Status = target
	tc.UpdatedAt = now
	switch target {
	case domain.StatusEntryComplete:
		tc.EntryCompletedAt = &now
	case domain.StatusFiled:
		tc.FiledAt = &now
	}

	if err := s.repo.Update(ctx, tc); err != nil {
		return nil, err
	}

	s.log.Info("case status changed",
		zap.String("case_id", tc.ID.String()),
		zap.String("status", string(target)),
	)
	return tc, nil
}

func (s *Service) NextStatuses(ctx context.Context, id snowflake.ID) ([]domain.Status, error) {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotFound
	}
	tc, err := s.repo.Get(ctx, scope.ForPrincipal(principal), id)
	if err != nil {
		return nil, err
	}
	return domain.NextValidStatuses(tc.Status), nil
}
