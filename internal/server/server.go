package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/taxdesk/taxdesk/internal/audit/domain"
	"github.com/taxdesk/taxdesk/internal/auth"
	"github.com/taxdesk/taxdesk/internal/cache"
	"github.com/taxdesk/taxdesk/internal/clock"
	clientdomain "github.com/taxdesk/taxdesk/internal/client/domain"
	"github.com/taxdesk/taxdesk/internal/config"
	documentdomain "github.com/taxdesk/taxdesk/internal/document/domain"
	magiclinkdomain "github.com/taxdesk/taxdesk/internal/magiclink/domain"
	messagedomain "github.com/taxdesk/taxdesk/internal/message/domain"
	obslogger "github.com/taxdesk/taxdesk/internal/observability/logger"
	obsmetrics "github.com/taxdesk/taxdesk/internal/observability/metrics"
	organizationdomain "github.com/taxdesk/taxdesk/internal/organization/domain"
	"github.com/taxdesk/taxdesk/internal/ratelimit"
	taxcasedomain "github.com/taxdesk/taxdesk/internal/taxcase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock

	authn       *auth.Authenticator
	orgSvc      organizationdomain.Service
	orgRepo     organizationdomain.Repository
	orgCache    cache.OrgCache
	clientSvc   clientdomain.Service
	caseSvc     taxcasedomain.Service
	caseRepo    taxcasedomain.Repository
	documentSvc documentdomain.Service
	docRepo     documentdomain.Repository
	messageSvc  messagedomain.Service
	msgRepo     messagedomain.Repository
	linkSvc     magiclinkdomain.Service
	auditSvc    auditdomain.Service

	portalLimiter ratelimit.PortalLimiter
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	Authn       *auth.Authenticator
	OrgSvc      organizationdomain.Service
	OrgRepo     organizationdomain.Repository
	OrgCache    cache.OrgCache
	ClientSvc   clientdomain.Service
	CaseSvc     taxcasedomain.Service
	CaseRepo    taxcasedomain.Repository
	DocumentSvc documentdomain.Service
	DocRepo     documentdomain.Repository
	MessageSvc  messagedomain.Service
	MsgRepo     messagedomain.Repository
	LinkSvc     magiclinkdomain.Service
	AuditSvc    auditdomain.Service

	PortalLimiter ratelimit.PortalLimiter
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		clock:         p.Clock,
		authn:         p.Authn,
		orgSvc:        p.OrgSvc,
		orgRepo:       p.OrgRepo,
		orgCache:      p.OrgCache,
		clientSvc:     p.ClientSvc,
		caseSvc:       p.CaseSvc,
		caseRepo:      p.CaseRepo,
		documentSvc:   p.DocumentSvc,
		docRepo:       p.DocRepo,
		messageSvc:    p.MessageSvc,
		msgRepo:       p.MsgRepo,
		linkSvc:       p.LinkSvc,
		auditSvc:      p.AuditSvc,
		portalLimiter: p.PortalLimiter,
	}

	s.registerAPIRoutes()
	s.registerPortalRoutes()
	s.registerFallback()

	return s
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	api.POST("/orgs", s.CreateOrg)
	api.GET("/orgs/:id", s.GetOrg)

	api.GET("/team", s.ListStaff)
	api.POST("/invites", s.InviteStaff)
	api.PATCH("/team/:id/role", s.UpdateStaffRole)
	api.POST("/team/:id/deactivate", s.DeactivateStaff)

	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClient)
	api.POST("/clients/:id/assignments", s.RequireOrgAdmin(), s.AssignStaff)
	api.DELETE("/clients/:id/assignments/:staffID", s.RequireOrgAdmin(), s.UnassignStaff)

	api.GET("/cases", s.ListCases)
	api.POST("/cases", s.CreateCase)
	api.GET("/cases/:id", s.GetCase)
	api.POST("/cases/:id/status", s.TransitionCase)
	api.GET("/cases/:id/statuses", s.NextCaseStatuses)
	api.GET("/cases/:id/activity", s.ListCaseActivity)

	api.GET("/cases/:id/documents", s.ListDocuments)
	api.POST("/cases/:id/documents", s.UploadDocument)
	api.POST("/documents/:id/rename", s.RenameDocument)
	api.POST("/documents/:id/classify", s.ClassifyDocument)
	api.GET("/documents/:id/download", s.DownloadDocument)
	api.DELETE("/documents/:id", s.DeleteDocument)

	api.GET("/cases/:id/messages", s.ListMessages)
	api.POST("/cases/:id/messages", s.PostMessage)
	api.POST("/messages/:id/read", s.MarkMessageRead)

	api.POST("/cases/:id/links", s.IssueLink)
	api.GET("/cases/:id/links", s.ListLinks)
	api.DELETE("/links/:id", s.RevokeLink)
}

func (s *Server) registerPortalRoutes() {
	portal := s.engine.Group("/portal")
	portal.Use(s.PortalRateLimit())

	portal.GET("/links/:token", s.PortalValidateLink)
	portal.GET("/forms/:token", s.PortalGetForm)
	portal.PUT("/forms/:token", s.PortalUpdateForm)
	portal.POST("/forms/:token/lock", s.PortalLockForm)
	portal.GET("/documents/:token", s.PortalListDocuments)
	portal.GET("/messages/:token", s.PortalListMessages)
	portal.POST("/messages/:token", s.PortalPostMessage)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		serveIndex(c)
	})
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
