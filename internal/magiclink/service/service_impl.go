package service

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/config"
	"github.com/taxdesk/taxdesk/internal/magiclink/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"github.com/taxdesk/taxdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Portal *config.PortalConfigHolder
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	portal *config.PortalConfigHolder
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("magiclink.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		portal: p.Portal,
		repo:   p.Repo,
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssueResponse, error) {
	if req.CaseID == 0 {
		return nil, domain.ErrInvalidCase
	}
	if !domain.ValidLinkType(req.Type) {
		return nil, domain.ErrInvalidType
	}

	portalCfg := s.portal.Get()
	token, err := generateToken(portalCfg.TokenLength)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := s.expiry(portalCfg, req, now)

	var createdBy snowflake.ID
	if principal, ok := orgcontext.PrincipalFromContext(ctx); ok {
		createdBy = principal.StaffID
	}

	link := domain.MagicLink{
		ID:        s.genID.Generate(),
		CaseID:    req.CaseID,
		Type:      req.Type,
		Token:     token,
		Active:    true,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Supersession and creation are one atomic unit; concurrent issuance for
	// the same (case, type) must never leave two active links behind. When
	// two issuances race, the loser's insert trips the partial unique index
	// on active (case, type) rows and is retried against the winner's commit.
	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if _, err := repo.DeactivateActive(ctx, req.CaseID, req.Type); err != nil {
				return err
			}
			return repo.Create(ctx, &link)
		})
		if err == nil {
			break
		}
		if db.IsDuplicateKeyErr(err) && attempt < issueRetryLimit {
			continue
		}
		return nil, err
	}

	s.log.Info("magic link issued",
		zap.String("case_id", req.CaseID.String()),
		zap.String("type", string(req.Type)),
	)

	return &domain.IssueResponse{
		Link:      link,
		Token:     token,
		URL:       buildURL(portalCfg.BaseURL, req.Type, token),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) expiry(cfg config.PortalConfig, req domain.IssueRequest, now time.Time) *time.Time {
	if req.TTL != nil {
		if *req.TTL <= 0 {
			return nil
		}
		t := now.Add(*req.TTL)
		return &t
	}
	hours := cfg.LinkTTLHours[string(req.Type)]
	if hours <= 0 {
		return nil
	}
	t := now.Add(time.Duration(hours) * time.Hour)
	return &t
}

func (s *Service) Validate(ctx context.Context, token string) (*domain.Validation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	link, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !link.Active {
		return nil, domain.ErrLinkDeactivated
	}

	now := s.clock.Now()
	// A link expiring exactly now is already expired; nil means never.
	if link.ExpiresAt != nil && !link.ExpiresAt.After(now) {
		return nil, domain.ErrExpiredToken
	}

	if formType, ok := link.Type.FormType(); ok {
		form, err := s.repo.GetForm(ctx, link.CaseID, formType)
		if err == nil && form.Status == domain.FormStatusLocked {
			return nil, domain.ErrFormLocked
		}
		if err != nil && err != domain.ErrFormNotFound {
			return nil, err
		}
	}

	// Usage accounting is best-effort; a lost increment is acceptable, a
	// failed validation is not.
	if err := s.repo.RecordUse(ctx, link.ID, now); err != nil {
		s.log.Warn("failed to record link use",
			zap.String("link_id", link.ID.String()),
			zap.Error(err),
		)
	} else {
		link.UseCount++
		link.LastUsedAt = &now
	}

	return &domain.Validation{Link: *link, CaseID: link.CaseID}, nil
}

func (s *Service) GetByID(ctx context.Context, linkID snowflake.ID) (*domain.MagicLink, error) {
	return s.repo.FindByID(ctx, linkID)
}

func (s *Service) Revoke(ctx context.Context, linkID snowflake.ID) error {
	return s.repo.Deactivate(ctx, linkID)
}

func (s *Service) ListByCase(ctx context.Context, caseID snowflake.ID) ([]domain.MagicLink, error) {
	if caseID == 0 {
		return nil, domain.ErrInvalidCase
	}
	return s.repo.ListByCase(ctx, caseID)
}

func (s *Service) GetForm(ctx context.Context, token string) (*domain.FormSubmission, error) {
	validation, formType, err := s.validateFormToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	form := &domain.FormSubmission{
		ID:        s.genID.Generate(),
		CaseID:    validation.CaseID,
		FormType:  formType,
		Status:    domain.FormStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.EnsureForm(ctx, form)
}

func (s *Service) UpdateForm(ctx context.Context, token string, payload map[string]any) (*domain.FormSubmission, error) {
	form, err := s.GetForm(ctx, token)
	if err != nil {
		return nil, err
	}
	if form.Status == domain.FormStatusLocked {
		return nil, domain.ErrFormLocked
	}

	form.Payload = datatypes.JSONMap(payload)
	form.Status = domain.FormStatusSubmitted
	form.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateForm(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *Service) LockForm(ctx context.Context, caseID snowflake.ID, formType string) error {
	if caseID == 0 {
		return domain.ErrInvalidCase
	}
	linkType := domain.LinkType(formType)
	if _, ok := linkType.FormType(); !ok {
		return domain.ErrInvalidType
	}

	// Locked forms must never stay reachable: the status change and the
	// link deactivation commit together or not at all.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		form, err := repo.GetForm(ctx, caseID, formType)
		if err != nil {
			return err
		}
		form.Status = domain.FormStatusLocked
		form.UpdatedAt = s.clock.Now()
		if err := repo.UpdateForm(ctx, form); err != nil {
			return err
		}

		_, err = repo.DeactivateActive(ctx, caseID, linkType)
		return err
	})
}

func (s *Service) validateFormToken(ctx context.Context, token string) (*domain.Validation, string, error) {
	validation, err := s.Validate(ctx, token)
	if err != nil {
		return nil, "", err
	}
	formType, ok := validation.Link.Type.FormType()
	if !ok {
		return nil, "", domain.ErrNotAFormLink
	}
	return validation, formType, nil
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// issueRetryLimit bounds supersession retries after a lost issuance race.
const issueRetryLimit = 3

// generateToken draws length characters from a URL-safe lowercase alphabet
// using a cryptographically strong source. Rejection sampling keeps the
// distribution uniform.
func generateToken(length int) (string, error) {
	if length <= 0 {
		length = 32
	}

	// Largest multiple of len(tokenAlphabet) that fits a byte.
	max := byte(256 - 256%len(tokenAlphabet))

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

func buildURL(baseURL string, linkType domain.LinkType, token string) string {
	base := strings.TrimRight(baseURL, "/")
	switch linkType {
	case domain.LinkTypeScheduleC:
		return base + "/forms/schedule-c/" + token
	case domain.LinkTypeScheduleE:
		return base + "/forms/schedule-e/" + token
	case domain.LinkTypeDraftReturn:
		return base + "/draft/" + token
	default:
		return base + "/portal/" + token
	}
}
