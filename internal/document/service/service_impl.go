package service

import (
	"context"
	"path"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/taxdesk/taxdesk/internal/clock"
	"github.com/taxdesk/taxdesk/internal/document/domain"
	"github.com/taxdesk/taxdesk/internal/orgcontext"
	"github.com/taxdesk/taxdesk/internal/scope"
	taxcasedomain "github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"github.com/taxdesk/taxdesk/pkg/storage"
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
	Store storage.ObjectStore
	Repo  domain.Repository
	Cases taxcasedomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store storage.ObjectStore
	repo  domain.Repository
	cases taxcasedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("document.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,
		repo:  p.Repo,
		cases: p.Cases,
	}
}

func (s *Service) Upload(ctx context.Context, req domain.UploadRequest) (*domain.Document, error) {
	name, ext := splitName(req.DisplayName, req.Extension)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	category := req.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}

	// Visibility check doubles as existence check; a case outside the
	// caller's scope reads as absent.
	tc, err := s.cases.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	key, err := domain.ResolveKey(ctx, req.CaseID, name, ext, s.repo.KeyExists)
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(ctx, key, req.ContentType, req.Body, req.SizeBytes); err != nil {
		return nil, err
	}

	var uploadedBy snowflake.ID
	if principal, ok := orgcontext.PrincipalFromContext(ctx); ok {
		uploadedBy = principal.StaffID
	}

	now := s.clock.Now()
	doc := domain.Document{
		ID:          s.genID.Generate(),
		OrgID:       tc.OrgID,
		CaseID:      req.CaseID,
		StorageKey:  key,
		DisplayName: name,
		Extension:   ext,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Category:    category,
		Status:      domain.DocStatusUploaded,
		UploadedBy:  uploadedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, &doc); err != nil {
		// The object is already in the bucket; the row is authoritative, so
		// clean up rather than leak an unreferenced object.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphan object after insert failure",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return &doc, nil
}

func (s *Service) List(ctx context.Context, caseID snowflake.ID) ([]domain.Document, error) {
	if caseID == 0 {
		return nil, domain.ErrInvalidCase
	}
	sc := s.scopeFromContext(ctx)
	return s.repo.ListByCase(ctx, sc, caseID)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Document, error) {
	sc := s.scopeFromContext(ctx)
	return s.repo.Get(ctx, sc, id)
}

func (s *Service) Rename(ctx context.Context, id snowflake.ID, newName string) (*domain.Document, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, ext := splitName(newName, doc.Extension)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if name == doc.DisplayName && ext == doc.Extension {
		return doc, nil
	}

	newKey, err := domain.ResolveKey(ctx, doc.CaseID, name, ext, s.repo.KeyExists)
	if err != nil {
		return nil, err
	}

	// Copy first, persist second, delete last. If the delete fails the old
	// object is an orphan in the bucket, which is tolerable: the row alone
	// decides which key is current.
	if err := s.store.Copy(ctx, doc.StorageKey, newKey); err != nil {
		return nil, err
	}

	oldKey := doc.StorageKey
	doc.StorageKey = newKey
	doc.DisplayName = name
	doc.Extension = ext
	doc.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, doc); err != nil {
		if delErr := s.store.Delete(ctx, newKey); delErr != nil {
			s.log.Warn("failed to remove copied object after persist failure",
				zap.String("key", newKey), zap.Error(delErr))
		}
		return nil, err
	}

	if err := s.store.Delete(ctx, oldKey); err != nil {
		s.log.Warn("failed to delete old object after rename",
			zap.String("key", oldKey), zap.Error(err))
	}
	return doc, nil
}

func (s *Service) DownloadURL(ctx context.Context, id snowflake.ID) (string, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignDownload(ctx, doc.StorageKey, doc.DisplayName+doc.Extension)
}

func (s *Service) Classify(ctx context.Context, id snowflake.ID, category string) (*domain.Document, error) {
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Category = category
	doc.Status = domain.DocStatusClassified
	doc.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		s.log.Warn("failed to delete object for removed document",
			zap.String("key", doc.StorageKey), zap.Error(err))
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

// splitName separates a display name from its extension, preferring an
// extension embedded in the name over the fallback.
func splitName(displayName, fallbackExt string) (string, string) {
	name := strings.TrimSpace(displayName)
	if ext := path.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext), strings.ToLower(ext)
	}
	ext := strings.ToLower(strings.TrimSpace(fallbackExt))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name, ext
}
