package main

// @title NestDesk API
// @version 1.0
// @description Real-estate agent CRM: contacts, pipeline, reminders, and
// @description templates, synced optimistically against a remote database
// @description with a local fallback cache.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dmaldonado/nestdesk/config"
	"github.com/dmaldonado/nestdesk/pkg/api/handlers"
	"github.com/dmaldonado/nestdesk/pkg/audit"
	"github.com/dmaldonado/nestdesk/pkg/auth"
	"github.com/dmaldonado/nestdesk/pkg/backup"
	"github.com/dmaldonado/nestdesk/pkg/billing"
	"github.com/dmaldonado/nestdesk/pkg/cache"
	"github.com/dmaldonado/nestdesk/pkg/database"
	"github.com/dmaldonado/nestdesk/pkg/email"
	"github.com/dmaldonado/nestdesk/pkg/export"
	"github.com/dmaldonado/nestdesk/pkg/jobs"
	"github.com/dmaldonado/nestdesk/pkg/localstore"
	"github.com/dmaldonado/nestdesk/pkg/logger"
	"github.com/dmaldonado/nestdesk/pkg/metrics"
	custommw "github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/repository"
	"github.com/dmaldonado/nestdesk/pkg/team"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// System database: Postgres when configured, on-disk SQLite otherwise.
	// Accounts, teams, and the audit log always live here; CRM collections
	// live here too only in remote mode.
	var db *gorm.DB
	var err error
	if cfg.RemoteConfigured() {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		log.Printf("✅ Remote database connected")
	} else {
		db, err = database.OpenLocal(cfg.LocalStorePath)
		if err != nil {
			log.Fatalf("❌ Failed to open local database: %v", err)
		}
		log.Printf("ℹ️  No DATABASE_URL; workspaces run against the local store only")
	}

	// Workspace snapshot cache, separate file next to the local database.
	cachePath := filepath.Join(filepath.Dir(cfg.LocalStorePath), "cache.db")
	local, err := localstore.Open(cachePath)
	if err != nil {
		log.Fatalf("❌ Failed to open local cache: %v", err)
	}

	// Redis: required for the token blacklist; the service still runs
	// without it, tokens just stay valid until expiry.
	var tokenBlacklist *auth.TokenBlacklist
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, token revocation disabled: %v", err)
	} else {
		defer redisClient.Close()
		tokenBlacklist = auth.NewTokenBlacklist(redisClient)
		log.Printf("✅ Redis connected")
	}

	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Services
	repos := repository.NewRepositories(db)
	teamService := team.NewService(db)
	auditLogger := audit.NewService(db, appLog)
	emailService := email.NewService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	exportService := export.NewService(cfg.ExportDir)
	billingService := billing.NewService(repos.Users, &billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceSolo:     cfg.StripePriceSolo,
		PriceTeam:     cfg.StripePriceTeam,
		SuccessURL:    cfg.FrontendURL + "/settings/billing?success=true",
		CancelURL:     cfg.FrontendURL + "/settings/billing?canceled=true",
	})

	// Workspaces write to the remote repositories only in remote mode; in
	// local mode every mutation lands in the cache alone.
	var workspaceRemote *repository.Repositories
	var workspaceTeams *team.Service
	if cfg.RemoteConfigured() {
		workspaceRemote = repos
		workspaceTeams = teamService
	}
	sessions := workspace.NewManager(workspaceRemote, workspaceTeams, local, appLog)
	sessions.SetMetrics(prometheusMetrics)

	// Backup service
	var backupService *backup.Service
	if cfg.BackupEnabled {
		backupService, err = backup.NewService(backup.Config{
			AWSAccessKeyID:     cfg.AWSAccessKeyID,
			AWSSecretAccessKey: cfg.AWSSecretAccessKey,
			AWSRegion:          cfg.AWSRegion,
			S3Bucket:           cfg.BackupS3Bucket,
			DatabaseURL:        cfg.DatabaseURL,
			LocalStorePath:     cfg.LocalStorePath,
			LocalBackupDir:     filepath.Join(cfg.ExportDir, "backups"),
			RetentionDays:      cfg.BackupRetentionDays,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize backup service: %v", err)
			backupService = nil
		} else {
			log.Printf("✅ Backup service initialized (S3: %s, retention: %d days)",
				cfg.BackupS3Bucket, cfg.BackupRetentionDays)
		}
	} else {
		log.Printf("ℹ️  Backup service disabled (BACKUP_ENABLED=false)")
	}

	// Cron jobs
	runner := jobs.NewRunner(repos, emailService, log.Default())
	cronManager := jobs.NewCronManager(runner, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	if backupService != nil {
		if err := cronManager.AddNightlyBackup(backupService); err != nil {
			log.Fatalf("❌ Failed to schedule backup job: %v", err)
		}
	}
	cronManager.Start()
	log.Printf("✅ Cron jobs started")

	// Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommw.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommw.NewRateLimiter(5, 2)
	webhookRateLimiter := custommw.NewRateLimiter(100, 20)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))
	e.Use(echomw.Gzip())
	e.Use(echomw.Secure())
	e.Use(globalRateLimiter.Middleware())

	// Public endpoints
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "NestDesk API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})
	e.GET("/health", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Handlers
	authHandler := handlers.NewAuthHandler(repos.Users, cfg, tokenBlacklist, sessions, teamService, auditLogger, prometheusMetrics)
	contactHandler := handlers.NewContactHandler(sessions, repos.Users, prometheusMetrics)
	reminderHandler := handlers.NewReminderHandler(sessions, repos.Users, prometheusMetrics)
	templateHandler := handlers.NewTemplateHandler(sessions, repos.Users, emailService, auditLogger, prometheusMetrics)
	dashboardHandler := handlers.NewDashboardHandler(sessions, repos.Users)
	teamHandler := handlers.NewTeamHandler(teamService, repos.Users, sessions, auditLogger)
	billingHandler := handlers.NewBillingHandler(billingService)
	exportHandler := handlers.NewExportHandler(exportService, sessions, repos.Users, prometheusMetrics)
	activityLogHandler := handlers.NewActivityLogHandler(auditLogger)

	v1 := e.Group("/api/v1")
	jwtAuth := custommw.JWTAuth(cfg.JWTSecret, tokenBlacklist)

	// Authentication (public, brute-force rate limited)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register, authRateLimiter.Middleware())
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.Middleware())
		authRoutes.GET("/me", authHandler.Me, jwtAuth)
		authRoutes.POST("/logout", authHandler.Logout, jwtAuth)
	}

	// Stripe webhook (public, signature-verified)
	v1.POST("/webhook/stripe", billingHandler.Webhook, webhookRateLimiter.Middleware())

	// Everything else requires a valid token
	protected := v1.Group("", jwtAuth)
	{
		contacts := protected.Group("/contacts")
		{
			contacts.GET("", contactHandler.List)
			contacts.POST("", contactHandler.Create)
			contacts.GET("/:id", contactHandler.Get)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
			contacts.PUT("/:id/stage", contactHandler.SetStage)
			contacts.POST("/:id/activities", contactHandler.AddActivity)
			contacts.POST("/:id/showings", contactHandler.AddShowing)
			contacts.DELETE("/:id/showings/:showingId", contactHandler.DeleteShowing)
			contacts.POST("/:id/handoff", contactHandler.Handoff)
		}
		protected.PUT("/search", contactHandler.SetSearch)
		protected.PUT("/filter", contactHandler.SetFilter)

		reminders := protected.Group("/reminders")
		{
			reminders.GET("", reminderHandler.List)
			reminders.POST("", reminderHandler.Create)
			reminders.PUT("/:id", reminderHandler.Update)
			reminders.POST("/:id/complete", reminderHandler.Complete)
			reminders.DELETE("/:id", reminderHandler.Delete)
		}

		templates := protected.Group("/templates")
		{
			templates.GET("", templateHandler.List)
			templates.POST("", templateHandler.Create)
			templates.PUT("/:id", templateHandler.Update)
			templates.DELETE("/:id", templateHandler.Delete)
			templates.POST("/:id/fill", templateHandler.Fill)
			templates.POST("/:id/send", templateHandler.Send)
		}

		protected.GET("/dashboard", dashboardHandler.Get)
		protected.GET("/catalogs", dashboardHandler.Catalogs)
		protected.GET("/activity-log", activityLogHandler.List)

		teamRoutes := protected.Group("/team")
		{
			teamRoutes.POST("", teamHandler.Create)
			teamRoutes.GET("", teamHandler.Get)
			teamRoutes.POST("/members", teamHandler.AddMember)
			teamRoutes.DELETE("/members/:userId", teamHandler.RemoveMember)
			teamRoutes.PUT("/shared-pipeline", teamHandler.SetSharedPipeline)
		}

		billingRoutes := protected.Group("/billing")
		{
			billingRoutes.POST("/checkout", billingHandler.Checkout)
			billingRoutes.POST("/portal", billingHandler.Portal)
		}

		protected.GET("/export/contacts.csv", exportHandler.ExportCSV)
		protected.GET("/export/contacts.xlsx", exportHandler.ExportXLSX)
		protected.POST("/import/contacts", exportHandler.ImportCSV)
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 NestDesk API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), auth 5/min", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: 7AM occasions, 8AM digests, 11PM stats")

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
