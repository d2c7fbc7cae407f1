package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/depth-studio/depth-studio-api/api/swagger"
	"github.com/depth-studio/depth-studio-api/internal/handler"
	"github.com/depth-studio/depth-studio-api/internal/middleware"
	"github.com/depth-studio/depth-studio-api/internal/models"
	"github.com/depth-studio/depth-studio-api/internal/repository"
	"github.com/depth-studio/depth-studio-api/internal/service"
	"github.com/depth-studio/depth-studio-api/pkg/cache"
	"github.com/depth-studio/depth-studio-api/pkg/config"
	"github.com/depth-studio/depth-studio-api/pkg/database"
	"github.com/depth-studio/depth-studio-api/pkg/export"
	"github.com/depth-studio/depth-studio-api/pkg/logger"
	corsmiddleware "github.com/depth-studio/depth-studio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/depth-studio/depth-studio-api/pkg/middleware/requestid"
)

// @title Depth Studio API
// @version 1.0.0
// @description Content production platform: campaigns, tasks, photographer assignment and role onboarding
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	roleSelectionRepo := repository.NewRoleSelectionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)

	notificationService := service.NewNotificationService(
		notificationRepo,
		cfg.Notifications.WorkerConcurrency,
		cfg.Notifications.WorkerRetries,
		cfg.Notifications.RetryDelay,
		logr,
	)
	if cfg.Notifications.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		notificationService.Start(ctx)
		defer notificationService.Stop()
	}

	authService := service.NewAuthService(userRepo, permissionRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "depth-studio-api",
	})
	userService := service.NewUserService(userRepo, permissionRepo, nil, logr)
	brandService := service.NewBrandService(brandRepo, userRepo, nil, logr)
	progressService := service.NewProgressService(taskRepo, campaignRepo, logr)
	campaignService := service.NewCampaignService(campaignRepo, brandRepo, nil, logr)
	taskService := service.NewTaskService(taskRepo, campaignRepo, progressService, nil, logr)
	assignmentService := service.NewAssignmentService(taskRepo, userRepo, notificationService, metricsService, cfg.Assignment.MaxCandidates, logr)
	roleSelectionService := service.NewRoleSelectionService(roleSelectionRepo, userRepo, brandRepo, permissionRepo, notificationService, nil, logr)
	permissionService := service.NewPermissionService(userRepo, permissionRepo, taskRepo, campaignRepo, logr)
	dashboardService := service.NewDashboardService(dashboardRepo, roleSelectionService, cacheService, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	exportService := service.NewExportService(campaignRepo, taskRepo, userRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	brandHandler := handler.NewBrandHandler(brandService)
	campaignHandler := handler.NewCampaignHandler(campaignService, progressService, exportService)
	taskHandler := handler.NewTaskHandler(taskService, assignmentService)
	roleSelectionHandler := handler.NewRoleSelectionHandler(roleSelectionService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleMarketingCoordinator)
	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin)

	users := protected.Group("/users")
	{
		users.GET("", staff, userHandler.List)
		users.POST("", adminOnly, userHandler.Create)
		users.GET("/:id", middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleMarketingCoordinator), "SELF"), userHandler.Get)
		users.PUT("/:id", middleware.RBAC(string(models.RoleSuperAdmin), "SELF"), userHandler.Update)
		users.PATCH("/:id/status", adminOnly, userHandler.UpdateStatus)
		users.DELETE("/:id", adminOnly, userHandler.Deactivate)
		users.GET("/:id/role-selections", middleware.RBAC(string(models.RoleSuperAdmin), "SELF"), roleSelectionHandler.History)
	}

	roleSelections := protected.Group("/role-selections")
	{
		roleSelections.POST("", roleSelectionHandler.Submit)
		roleSelections.GET("/pending", adminOnly, roleSelectionHandler.ListPending)
		roleSelections.GET("/stats", adminOnly, roleSelectionHandler.Stats)
		roleSelections.PATCH("/:id/approve", adminOnly, roleSelectionHandler.Approve)
		roleSelections.PATCH("/:id/reject", adminOnly, roleSelectionHandler.Reject)
		roleSelections.GET("/brands", roleSelectionHandler.SearchBrands)
	}

	brands := protected.Group("/brands")
	{
		brands.GET("", brandHandler.Search)
		brands.GET("/:id", brandHandler.Get)
		brands.POST("", staff, brandHandler.Create)
		brands.PUT("/:id", staff, brandHandler.Update)
		brands.POST("/:id/coordinator", staff, brandHandler.AssignCoordinator)
	}

	campaigns := protected.Group("/campaigns")
	{
		campaigns.GET("", campaignHandler.List)
		campaigns.GET("/:id", campaignHandler.Get)
		campaigns.POST("", staff, campaignHandler.Create)
		campaigns.PUT("/:id", staff, campaignHandler.Update)
		campaigns.PATCH("/:id/status", staff, campaignHandler.UpdateStatus)
		campaigns.DELETE("/:id", staff, campaignHandler.Delete)
		campaigns.POST("/:id/progress/recompute", staff, campaignHandler.RecomputeProgress)
		if cfg.Reports.Enabled {
			campaigns.GET("/:id/export", staff, campaignHandler.Export)
		}
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", taskHandler.List)
		tasks.GET("/:id", taskHandler.Get)
		tasks.POST("", staff, taskHandler.Create)
		tasks.PUT("/:id", staff, taskHandler.Update)
		tasks.PATCH("/:id/status", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleMarketingCoordinator, models.RoleBrandCoordinator, models.RolePhotographer), taskHandler.UpdateStatus)
		tasks.DELETE("/:id", staff, taskHandler.Delete)
		tasks.POST("/:id/assign", staff, taskHandler.Assign)
		tasks.POST("/:id/auto-assign", staff, taskHandler.AutoAssign)
		tasks.POST("/:id/unassign", staff, taskHandler.Unassign)
	}

	protected.GET("/permissions/resolve", permissionHandler.Resolve)

	if cfg.Dashboard.Enabled {
		dashboard := protected.Group("/dashboard")
		dashboard.GET("/admin", staff, dashboardHandler.Admin)
		dashboard.GET("/photographer", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleMarketingCoordinator, models.RolePhotographer), dashboardHandler.Photographer)
	}

	if cfg.Notifications.Enabled {
		notifications := protected.Group("/notifications")
		notifications.GET("", notificationHandler.List)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	}

	protected.GET("/metrics/snapshot", adminOnly, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
