package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/audit/domain"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, e domain.Entry) error {
	action := strings.TrimSpace(e.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	if strings.TrimSpace(e.TargetType) == "" || e.TargetID == 0 {
		return domain.ErrInvalidTarget
	}

	entry := domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorKind:  domain.ActorSystem,
		Action:     action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Metadata:   datatypes.JSONMap(maskMetadata(e.Metadata)),
		CreatedAt:  s.clock.Now(),
	}
	if principal, ok := orgcontext.PrincipalFromContext(ctx); ok {
		entry.OrgID = principal.OrgID
		entry.ActorKind = domain.ActorStaff
		entry.ActorID = principal.StaffID
	}

	if err := s.repo.Insert(ctx, &entry); err != nil {
		s.log.Warn("failed to write audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) ListByTarget(ctx context.Context, targetType string, targetID snowflake.ID, limit int) ([]domain.AuditLog, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByTarget(ctx, orgID, targetType, targetID, limit)
}
