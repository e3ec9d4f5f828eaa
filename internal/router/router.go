// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/handlers"
	"github.com/javajoker/ipr-backend/internal/metrics"
	"github.com/javajoker/ipr-backend/internal/middleware"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/services"
)

const version = "1.0.0"

// Services is everything the HTTP surface calls into.
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Applications  *services.ApplicationService
	Notifications *services.NotificationService
	Admin         *services.AdminService
	Storage       *services.StorageService
	Hub           *events.Hub
	Metrics       *metrics.Metrics
}

// NewServices wires the services over store. Changes are published to hub.
func NewServices(store *repository.Store, cfg *config.Config, hub *events.Hub, m *metrics.Metrics, log logrus.FieldLogger) (*Services, error) {
	if hub == nil {
		hub = events.NewHub(log, m.LiveSubscriptions())
	}
	storageService, err := services.NewStorageService(cfg, log)
	if err != nil {
		return nil, err
	}

	notificationService := services.NewNotificationService(store, cfg, hub, m, log)
	allocator := services.NewAllocator(store.Counters, cfg.Workflow, m, log)

	return &Services{
		Auth:          services.NewAuthService(store, cfg, hub, log),
		Users:         services.NewUserService(store, notificationService, hub, log),
		Applications:  services.NewApplicationService(store, allocator, notificationService, hub, m, cfg.Workflow, log),
		Notifications: notificationService,
		Admin:         services.NewAdminService(store),
		Storage:       storageService,
		Hub:           hub,
		Metrics:       m,
	}, nil
}

func Initialize(svc *Services, cfg *config.Config, limiters middleware.Limiters, log logrus.FieldLogger) *gin.Engine {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users)
	applicationHandler := handlers.NewApplicationHandler(svc.Applications)
	attorneyHandler := handlers.NewAttorneyHandler(svc.Applications)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Applications, svc.Users)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	uploadHandler := handlers.NewUploadHandler(svc.Storage)
	liveHandler := handlers.NewLiveHandler(svc.Hub, svc.Applications, svc.Notifications, allowedOrigins(cfg), log)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	if svc.Metrics != nil {
		r.Use(middleware.Metrics(svc.Metrics))
	}
	r.Use(middleware.CORS(allowedOrigins(cfg)...))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	if cfg.Metrics.Enabled && svc.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(svc.Metrics.Handler()))
	}

	authRequired := middleware.AuthRequired(svc.Auth)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limiters.Auth.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		protected := v1.Group("")
		protected.Use(authRequired, limiters.General.Middleware())
		{
			protected.PUT("/users/profile", authHandler.UpdateProfile)

			// Applicant routes
			apps := protected.Group("/applications")
			{
				apps.POST("", applicationHandler.Create)
				apps.GET("", applicationHandler.List)
				apps.GET("/:id", applicationHandler.Get)
				apps.GET("/:id/reviews", applicationHandler.Reviews)
				apps.POST("/:id/submit", applicationHandler.Submit)
				apps.DELETE("/:id", applicationHandler.Delete)
			}

			protected.POST("/uploads", limiters.Upload.Middleware(), uploadHandler.UploadAttachments)

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.GET("/unread-count", notificationHandler.UnreadCount)
				notifications.PUT("/read-all", notificationHandler.MarkAllRead)
				notifications.PUT("/:id/read", notificationHandler.MarkRead)
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RoleRequired(models.RoleAdmin))
			{
				admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)

				admin.GET("/applications", adminHandler.ListApplications)
				admin.GET("/applications/:id", adminHandler.GetApplication)
				admin.GET("/applications/:id/reviews", applicationHandler.Reviews)
				admin.POST("/applications/:id/forward", adminHandler.ForwardApplication)
				admin.POST("/applications/:id/review", adminHandler.ReviewApplication)
				admin.POST("/applications/:id/approve-remarks", adminHandler.ApproveRemarks)
				admin.POST("/applications/:id/publish", adminHandler.PublishApplication)

				admin.GET("/users", adminHandler.GetUsers)
				admin.PUT("/users/:id/approve", adminHandler.ApproveUser)
				admin.PUT("/users/:id/reject", adminHandler.RejectUser)
				admin.PUT("/users/:id/role", adminHandler.ChangeUserRole)
			}

			// Patent attorney routes
			attorney := protected.Group("/attorney")
			attorney.Use(middleware.RoleRequired(models.RolePatentAttorney))
			{
				attorney.GET("/applications", attorneyHandler.Queue)
				attorney.GET("/applications/:id", attorneyHandler.Get)
				attorney.POST("/applications/:id/review", attorneyHandler.Review)
			}
		}

		// Live queries; long lived, so outside the request rate limit
		ws := v1.Group("/ws")
		ws.Use(authRequired)
		{
			ws.GET("/notifications", liveHandler.Notifications)
			ws.GET("/applications", liveHandler.Applications)
		}
	}

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.Frontend.BaseURL == "" || cfg.Environment != "production" {
		return nil
	}
	return []string{cfg.Frontend.BaseURL}
}
