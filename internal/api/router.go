package api

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	echoswagger "github.com/swaggo/echo-swagger"

	"github.com/simplekeytime/licensing-system/internal/api/handler"
	"github.com/simplekeytime/licensing-system/internal/api/middleware"
	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
	"github.com/simplekeytime/licensing-system/internal/core/service"
	"github.com/simplekeytime/licensing-system/internal/infrastructure/db/postgres"
)

// RouterConfig carries everything the router needs to assemble the
// repositories, services and handlers.
type RouterConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	Pool  *pgxpool.Pool
	Mongo *mongo.Database
	Redis *redis.Client

	AuditSink ports.AuditSink
	Mailer    ports.Mailer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("licensing"))

	// --- Repositories ---
	developerRepo := postgres.NewDeveloperRepository(cfg.Pool)
	projectRepo := postgres.NewProjectRepository(cfg.Pool)
	licenseRepo := postgres.NewLicenseRepository(cfg.Pool)
	userRepo := postgres.NewProjectUserRepository(cfg.Pool)
	announcementRepo := postgres.NewAnnouncementRepository(cfg.Pool)

	// --- Services ---
	guard := service.NewOwnerGuard(projectRepo, developerRepo)
	authService := service.NewAuthService(developerRepo, cfg.Mailer, cfg.JWTSecret, cfg.TokenTTL, cfg.Log)
	projectService := service.NewProjectService(projectRepo, guard, cfg.Log)
	licenseService := service.NewLicenseService(licenseRepo, projectRepo, guard, cfg.AuditSink, cfg.Log)
	userService := service.NewUserService(userRepo, projectRepo, guard, cfg.Mailer, cfg.Log)
	announcementService := service.NewAnnouncementService(announcementRepo, cfg.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	licenseHandler := handler.NewLicenseHandler(licenseService)
	appHandler := handler.NewAppHandler(licenseService, projectService, announcementService)
	userHandler := handler.NewUserHandler(userService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Pool, cfg.Mongo, cfg.Redis)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Developer account routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/verify/:token", authHandler.VerifyEmail)
	auth.POST("/reset/request", authHandler.RequestPasswordReset)
	auth.POST("/reset/confirm", authHandler.ResetPassword)

	// --- Dashboard (JWT) ---
	dashboard := e.Group("/dashboard", authMiddleware)
	dashboard.PUT("/developers/password", authHandler.ChangePassword)
	dashboard.POST("/developers/reset-dev-id", authHandler.RotateDevID)

	dashboard.POST("/projects", projectHandler.Create)
	dashboard.GET("/projects", projectHandler.List)
	dashboard.PUT("/projects/:id", projectHandler.Update)
	dashboard.DELETE("/projects/:id", projectHandler.Delete)

	dashboard.POST("/licenses", licenseHandler.CreateBatch)
	dashboard.GET("/licenses", licenseHandler.List)
	dashboard.PUT("/licenses/:id", licenseHandler.Edit)
	dashboard.POST("/licenses/:id/activate", licenseHandler.ManualActivate)
	dashboard.POST("/licenses/:id/deactivate", licenseHandler.ManualDeactivate)
	dashboard.POST("/licenses/:id/toggle", licenseHandler.ToggleActive)
	dashboard.POST("/licenses/batch", licenseHandler.BatchAction)

	dashboard.GET("/users", userHandler.List)

	// Platform announcements are admin-only.
	admin := dashboard.Group("/announcements", middleware.RBAC(domain.RoleAdmin))
	admin.POST("", announcementHandler.Publish)
	admin.DELETE("/:id", announcementHandler.Retire)

	// --- Public app API (keyed by app_id, guarded ops add dev_id) ---
	v1 := e.Group("/v1/api")
	v1.POST("/license/activate", appHandler.Activate)
	v1.GET("/license/status", appHandler.Status)
	v1.POST("/license/alldata", appHandler.Detail)
	v1.POST("/license/deactivate", appHandler.Deactivate)
	v1.POST("/license/disable", appHandler.Disable)
	v1.POST("/license/enable", appHandler.Enable)
	v1.POST("/license/ban", appHandler.Ban)
	v1.POST("/license/unban", appHandler.Unban)
	v1.POST("/license/delete", appHandler.Delete)

	v1.GET("/app/info", appHandler.UpdateInfo)
	v1.GET("/app/latest-version", appHandler.LatestVersion)
	v1.GET("/app/update-url", appHandler.UpdateURL)
	v1.GET("/app/update-notice", appHandler.UpdateNotice)
	v1.GET("/app/if-force", appHandler.ForceUpdate)

	v1.POST("/user/register", userHandler.Register)
	v1.POST("/user/login", userHandler.Login)
	v1.POST("/user/check-registration", userHandler.CheckRegistration)
	v1.POST("/user/alldata", userHandler.Detail)
	v1.POST("/user/ban", userHandler.Ban)
	v1.POST("/user/unban", userHandler.Unban)
	v1.POST("/user/delete", userHandler.Delete)
	v1.POST("/user/send-reset-email", userHandler.SendResetEmail)
	v1.POST("/user/reset-password", userHandler.ResetPassword)

	v1.GET("/announcements", appHandler.Announcements)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
