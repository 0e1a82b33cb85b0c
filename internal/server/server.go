// Package server wires repositories, services and handlers into a gin router.
package server

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/field-task-api/internal/auth"
	"github.com/yukikurage/field-task-api/internal/config"
	"github.com/yukikurage/field-task-api/internal/constants"
	"github.com/yukikurage/field-task-api/internal/database"
	"github.com/yukikurage/field-task-api/internal/handlers"
	"github.com/yukikurage/field-task-api/internal/metrics"
	"github.com/yukikurage/field-task-api/internal/middleware"
	"github.com/yukikurage/field-task-api/internal/notify"
	"github.com/yukikurage/field-task-api/internal/repository"
	"github.com/yukikurage/field-task-api/internal/services"
	"github.com/yukikurage/field-task-api/internal/storage"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces the API is built on.
type Deps struct {
	DB        *gorm.DB
	Sessions  sessions.Store
	Storage   storage.Backend
	Publisher notify.Publisher
	Metrics   *metrics.Metrics
}

// Server holds the configured router.
type Server struct {
	Router *gin.Engine
}

// New builds the API. The custom validation rules must already be registered.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	loginLimiter, err := middleware.NewLoginLimiter(cfg.LoginRate)
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)
	sessionRepo := repository.NewSessionRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	assignmentRepo := repository.NewAssignmentRepository(deps.DB)
	notificationRepo := repository.NewNotificationRepository(deps.DB)
	statsRepo := repository.NewStatsRepository(deps.DB)

	// Services
	photoService := services.NewPhotoService(deps.Storage, cfg.Upload, cfg.Storage.SignedURLTTL)
	authService := services.NewAuthService(
		userRepo,
		sessionRepo,
		auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer),
		deps.Metrics,
		cfg.Session.TTL,
	).WithBearerTTL(cfg.JWT.TTL)
	userService := services.NewUserService(userRepo, companyRepo, sessionRepo, photoService)
	companyService := services.NewCompanyService(companyRepo, photoService)
	taskService := services.NewTaskService(taskRepo, photoService, deps.Metrics)
	assignmentService := services.NewAssignmentService(assignmentRepo, userRepo, photoService, deps.Publisher, deps.Metrics)
	notificationService := services.NewNotificationService(notificationRepo)
	dashboardService := services.NewDashboardService(statsRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	userHandler := handlers.NewUserHandler(userService, cfg.Teams)
	taskHandler := handlers.NewTaskHandler(taskService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	mobileHandler := handlers.NewMobileHandler(authService, userService, assignmentService, notificationService)
	healthHandler := handlers.NewHealthHandler(database.NewPinger(deps.DB))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.Sessions))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	requireAuth := middleware.RequireAuth(authService)
	requireAdmin := middleware.RequireAdmin()
	id := middleware.RequireIDParams("id")
	photoIDs := middleware.RequireIDParams("id", "photo_id")

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
			authRoutes.PUT("/password", requireAuth, authHandler.ChangePassword)
		}

		companies := api.Group("/companies")
		companies.Use(requireAuth, middleware.RequireSuperAdmin())
		{
			companies.GET("", companyHandler.ListCompanies)
			companies.POST("", companyHandler.CreateCompany)
			companies.GET("/:id", id, companyHandler.GetCompany)
			companies.PUT("/:id", id, companyHandler.UpdateCompany)
			companies.DELETE("/:id", id, companyHandler.DeleteCompany)
			companies.POST("/:id/toggle", id, companyHandler.ToggleCompany)
			companies.GET("/:id/stats", id, companyHandler.GetCompanyStats)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/assignable", userHandler.ListAssignable)
			users.GET("/teams", userHandler.ListTeams)
			users.PUT("/me/push-token", userHandler.UpdateMyPushToken)
			users.GET("", requireAdmin, userHandler.ListUsers)
			users.POST("", requireAdmin, userHandler.CreateUser)
			users.GET("/:id", requireAdmin, id, userHandler.GetUser)
			users.DELETE("/:id", requireAdmin, id, userHandler.DeleteUser)
			users.POST("/:id/toggle", requireAdmin, id, userHandler.ToggleUser)
			users.PUT("/:id/password", requireAdmin, id, userHandler.ResetPassword)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", id, taskHandler.GetTask)
			tasks.DELETE("/:id", id, taskHandler.DeleteTask)
			tasks.GET("/:id/photos", id, taskHandler.ListPhotos)
			tasks.POST("/:id/photos", id, taskHandler.AddPhotos)
			tasks.GET("/:id/photos/:photo_id/file", photoIDs, taskHandler.GetPhotoFile)
			tasks.DELETE("/:id/photos/:photo_id", photoIDs, taskHandler.DeletePhoto)
		}

		assignments := api.Group("/assignments")
		assignments.Use(requireAuth)
		{
			assignments.GET("", assignmentHandler.ListAssignments)
			assignments.POST("", requireAdmin, assignmentHandler.CreateAssignment)
			assignments.GET("/:id", id, assignmentHandler.GetAssignment)
			assignments.DELETE("/:id", requireAdmin, id, assignmentHandler.DeleteAssignment)
			assignments.PUT("/:id/status", id, assignmentHandler.UpdateStatus)
			assignments.GET("/:id/photos", id, assignmentHandler.ListPhotos)
			assignments.POST("/:id/photos", id, assignmentHandler.AddPhotos)
			assignments.GET("/:id/photos/:photo_id/file", photoIDs, assignmentHandler.GetPhotoFile)
			assignments.DELETE("/:id/photos/:photo_id", photoIDs, assignmentHandler.DeletePhoto)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", id, notificationHandler.MarkRead)
		}

		api.GET("/dashboard", requireAuth, dashboardHandler.GetDashboard)

		mobile := api.Group("/mobile")
		mobile.Use(corsMiddleware(cfg.CORS))
		{
			// Preflights only reach the cors middleware through a matching route.
			mobile.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
			mobile.POST("/login", middleware.RateLimit(loginLimiter), mobileHandler.Login)

			authed := mobile.Group("")
			authed.Use(requireAuth)
			{
				authed.GET("/users", mobileHandler.ListUsers)
				authed.PUT("/users/:id/push-token", mobileHandler.UpdatePushToken)
				authed.GET("/tasks/:id", mobileHandler.ListAssignedTasks)
				authed.PUT("/tasks/:id/status", mobileHandler.UpdateTaskStatus)
				authed.POST("/tasks/:id/photos", mobileHandler.UploadTaskPhotos)
				authed.GET("/tasks/:id/photos", mobileHandler.ListTaskPhotos)
				authed.GET("/notifications/:id", mobileHandler.ListNotifications)
				authed.PUT("/notifications/:id/read", mobileHandler.MarkNotificationRead)
			}
		}
	}

	return &Server{Router: r}, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
