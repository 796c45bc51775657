package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/orgfolio/gatekeeper/internal/audit"
	auditdomain "github.com/orgfolio/gatekeeper/internal/audit/domain"
	"github.com/orgfolio/gatekeeper/internal/auth"
	authdomain "github.com/orgfolio/gatekeeper/internal/auth/domain"
	"github.com/orgfolio/gatekeeper/internal/config"
	"github.com/orgfolio/gatekeeper/internal/entitlement"
	entitlementdomain "github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	"github.com/orgfolio/gatekeeper/internal/observability/metrics"
	"github.com/orgfolio/gatekeeper/internal/organization"
	organizationdomain "github.com/orgfolio/gatekeeper/internal/organization/domain"
	"github.com/orgfolio/gatekeeper/internal/quota"
	quotadomain "github.com/orgfolio/gatekeeper/internal/quota/domain"
	"github.com/orgfolio/gatekeeper/internal/ratelimit"
	"github.com/orgfolio/gatekeeper/internal/reportjob"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fx.Provide(NewEngine),
	audit.Module,
	auth.Module,
	entitlement.Module,
	organization.Module,
	quota.Module,
	ratelimit.Module,
	reportjob.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
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
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	authsvc         authdomain.Service
	entitlementSvc  entitlementdomain.Service
	quotaSvc        quotadomain.Service
	organizationSvc organizationdomain.Service
	auditSvc        auditdomain.Service
	reportSvc       reportjob.Service
	publicLimiter   *ratelimit.PublicLimiter
	metrics         *metrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	Authsvc         authdomain.Service
	EntitlementSvc  entitlementdomain.Service
	QuotaSvc        quotadomain.Service
	OrganizationSvc organizationdomain.Service
	AuditSvc        auditdomain.Service
	ReportSvc       reportjob.Service
	PublicLimiter   *ratelimit.PublicLimiter `optional:"true"`
	Metrics         *metrics.Metrics         `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		authsvc:         p.Authsvc,
		entitlementSvc:  p.EntitlementSvc,
		quotaSvc:        p.QuotaSvc,
		organizationSvc: p.OrganizationSvc,
		auditSvc:        p.AuditSvc,
		reportSvc:       p.ReportSvc,
		publicLimiter:   p.PublicLimiter,
		metrics:         p.Metrics,
	}

	s.registerAPIRoutes()
	s.registerPublicRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired(), EntitlementScope())

	api.GET("/features", s.ListEffectiveFeatures)
	api.GET("/features/:key", s.GetFeature)
	api.POST("/quota/consume", s.ConsumeQuota)
	api.POST("/orgs/:id/reports", s.CreateReport)
	api.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/api/public", s.PublicRateLimit())

	public.GET("/orgs/:slug", s.PublicOrganization)
}
