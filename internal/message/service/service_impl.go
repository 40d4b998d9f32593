package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/message/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"github.com/taxdesk/taxdesk/internal/scope"
	taxcasedomain "github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Cases taxcasedomain.Service
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	cases taxcasedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("message.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		cases: p.Cases,
	}
}

func (s *Service) Post(ctx context.Context, caseID snowflake.ID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}

	tc, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var authorID snowflake.ID
	if principal, ok := orgcontext.PrincipalFromContext(ctx); ok {
		authorID = principal.StaffID
	}

	msg := domain.Message{
		ID:         s.genID.Generate(),
		OrgID:      tc.OrgID,
		CaseID:     caseID,
		AuthorKind: domain.AuthorStaff,
		AuthorID:   authorID,
		Body:       body,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) PostFromPortal(ctx context.Context, orgID, caseID snowflake.ID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}
	if orgID == 0 || caseID == 0 {
		return nil, domain.ErrInvalidCase
	}

	msg := domain.Message{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		CaseID:     caseID,
		AuthorKind: domain.AuthorClient,
		Body:       body,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) List(ctx context.Context, caseID snowflake.ID) ([]domain.Message, error) {
	if caseID == 0 {
		return nil, domain.ErrInvalidCase
	}
	return s.repo.ListByCase(ctx, s.scopeFromContext(ctx), caseID)
}

func (s *Service) MarkRead(ctx context.Context, id snowflake.ID) error {
	affected, err := s.repo.MarkRead(ctx, s.scopeFromContext(ctx), id, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) scopeFromContext(ctx context.Context) scope.Scope {
	principal, ok := orgcontext.PrincipalFromContext(ctx)
	if !ok {
		return scope.Scope{Kind: scope.KindDenied}
	}
	return scope.ForPrincipal(principal)
}
