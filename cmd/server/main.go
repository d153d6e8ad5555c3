// Package main is the entry point for the giftworks API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftworks/internal/config"
	"giftworks/internal/domain/access"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/billing"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/internal/domain/prefs"
	"giftworks/internal/domain/survey"
	v1 "giftworks/internal/infrastructure/http/v1"
	"giftworks/internal/infrastructure/storage/postgres"
	"giftworks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting giftworks server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	userRepo := postgres.NewUserRepo(txManager)
	orgRepo := postgres.NewOrgRepo(txManager)
	surveyRepo := postgres.NewSurveyRepo(txManager)
	reqLogRepo := postgres.NewRequestLogRepo(txManager)
	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Access ---
	jwtConfig := identity.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTTTL
	jwtService := identity.NewJWTService(jwtConfig)

	allowlist := access.NewAllowlist(cfg.OperatorEmails, cfg.LegacySlugs)
	resolver := access.NewResolver(jwtService, userRepo, orgRepo)

	// --- Services ---
	auditor := audit.NewEmitter(auditRepo)
	authService := identity.NewService(userRepo, jwtService, txManager)
	orgService := org.NewService(orgRepo, userRepo, auditor, txManager)
	surveyService := survey.NewService(surveyRepo, auditor, txManager)
	prefsService := prefs.NewService(userRepo, userRepo, auditor, txManager)
	billingService := billing.NewService(orgRepo, billing.ParsePriceMap(cfg.PriceMap), auditor, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool.Unwrap(),
		Logger:         log,
		Resolver:       resolver,
		Allowlist:      allowlist,
		AuthService:    authService,
		OrgService:     orgService,
		SurveyService:  surveyService,
		PrefsService:   prefsService,
		BillingService: billingService,
		Users:          userRepo,
		Orgs:           orgRepo,
		AuditLog:       auditRepo,
		ReqLogs:        reqLogRepo,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
