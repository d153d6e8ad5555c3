// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"giftworks/internal/domain/access"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/billing"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/internal/domain/prefs"
	"giftworks/internal/domain/survey"
	"giftworks/internal/infrastructure/http/v1/handlers"
	"giftworks/internal/infrastructure/http/v1/middleware"
	"giftworks/internal/infrastructure/storage/postgres"
	"giftworks/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the shared database pool (health checks).
	Pool *pgxpool.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// Resolver turns bearer credentials into access contexts.
	Resolver *access.Resolver

	// Allowlist backs the system-admin and legacy-tenant checks.
	Allowlist *access.Allowlist

	AuthService    *identity.Service
	OrgService     *org.Service
	SurveyService  *survey.Service
	PrefsService   *prefs.Service
	BillingService *billing.Service

	Users    identity.Repository
	Orgs     org.Repository
	AuditLog audit.Store
	ReqLogs  *postgres.RequestLogRepo
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger, cfg.ReqLogs))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		// Public endpoints: login and the billing relay (provider-signed).
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		public := api.Group("/auth")
		public.POST("/login", authHandler.Login)
		public.POST("/register", authHandler.Register)
		public.POST("/logout", authHandler.Logout)

		billingHandler := handlers.NewBillingHandler(base, cfg.BillingService)
		api.POST("/billing/webhook", billingHandler.Webhook)

		// Everything below resolves the credential first. Demo-org write
		// blocking happens inside resolution, before any guard runs.
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.Resolver))

		protected.GET("/auth/me", authHandler.Me)

		orgHandler := handlers.NewOrgHandler(base, cfg.OrgService, cfg.SurveyService, cfg.Users, cfg.Allowlist)
		orgs := protected.Group("/orgs")
		{
			orgs.POST("", orgHandler.Create)
			orgs.POST("/join", orgHandler.Join)
			orgs.GET("/check-slug", orgHandler.CheckSlug)
			orgs.GET("/search", orgHandler.Search)
			orgs.GET("/current", orgHandler.Current)
			orgs.PATCH("/current", orgHandler.Update)

			members := orgs.Group("/current/members")
			members.Use(middleware.RequireOrgAdmin(cfg.Allowlist))
			members.GET("", orgHandler.ListMembers)
			members.POST("/:id/approve", orgHandler.ApproveMember)
			members.DELETE("/:id", orgHandler.RejectMember)
			members.PATCH("/:id/role", orgHandler.UpdateMemberRole)
			members.GET("/:id/assessments", orgHandler.MemberAssessments)
			members.POST("/bulk-approve", orgHandler.BulkApprove)
			members.POST("/bulk-reject", orgHandler.BulkReject)

			orgs.POST("/current/invite", orgHandler.Invite)
		}

		// Assessments work for standalone users too (free bundle); only the
		// export surface requires an organization seat.
		surveyHandler := handlers.NewSurveyHandler(base, cfg.SurveyService)
		surveys := protected.Group("/surveys")
		{
			surveys.POST("", surveyHandler.Submit)
			surveys.GET("", surveyHandler.History)
			surveys.GET("/export", middleware.RequireOrganization(), surveyHandler.Export)
		}

		prefsHandler := handlers.NewPrefsHandler(base, cfg.PrefsService, cfg.Allowlist)
		preferences := protected.Group("/preferences")
		{
			preferences.GET("", prefsHandler.Get)
			preferences.PATCH("", prefsHandler.Update)
			preferences.POST("/reset", prefsHandler.Reset)
			preferences.GET("/theme-usage", prefsHandler.ThemeUsage)
		}

		auditHandler := handlers.NewAuditHandler(base, cfg.AuditLog, cfg.Allowlist)
		protected.GET("/audit", auditHandler.List)

		adminHandler := handlers.NewAdminHandler(base, cfg.Users, cfg.Orgs, cfg.ReqLogs)
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireSystemAdmin(cfg.Allowlist))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/organizations", adminHandler.SearchOrgs)
			admin.GET("/logs", adminHandler.ListLogs)
		}
	}

	return router
}
