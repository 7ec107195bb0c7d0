package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/iut-charges-api/internal/handler"
	"github.com/noah-isme/iut-charges-api/internal/middleware"
	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/service"
	"github.com/noah-isme/iut-charges-api/pkg/config"
	"github.com/noah-isme/iut-charges-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/iut-charges-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/iut-charges-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Auth           *handler.AuthHandler
	Metrics        *handler.MetricsHandler
	Departments    *handler.DepartmentHandler
	Courses        *handler.CourseHandler
	TeachingStatus *handler.TeachingStatusHandler
	Teachers       *handler.TeacherHandler
	Rooms          *handler.RoomHandler
	Interventions  *handler.InterventionHandler
	ScheduleSlots  *handler.ScheduleSlotHandler
	Allocations    *handler.AllocationHandler
	Reports        *handler.ReportHandler
}

// Setup builds the gin engine with global middleware and every route.
func Setup(cfg *config.Config, h Handlers, tokens middleware.TokenValidator, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)

	authorized := api.Group("")
	authorized.Use(middleware.JWT(tokens))
	authorized.Use(middleware.WritesRequire(models.RoleAdmin))
	{
		authorized.GET("/auth/me", h.Auth.Me)

		departments := authorized.Group("/departments")
		{
			departments.GET("", h.Departments.List)
			departments.GET("/:id", h.Departments.Get)
			departments.POST("", h.Departments.Create)
			departments.PUT("/:id", h.Departments.Update)
			departments.DELETE("/:id", h.Departments.Delete)
		}

		courses := authorized.Group("/courses")
		{
			courses.GET("", h.Courses.List)
			courses.GET("/:id", h.Courses.Get)
			courses.POST("", h.Courses.Create)
			courses.PUT("/:id", h.Courses.Update)
			courses.DELETE("/:id", h.Courses.Delete)
		}

		statuses := authorized.Group("/teaching-statuses")
		{
			statuses.GET("", h.TeachingStatus.List)
			statuses.POST("", h.TeachingStatus.Create)
			statuses.PUT("/:id", h.TeachingStatus.Update)
		}

		teachers := authorized.Group("/teachers")
		{
			teachers.GET("", h.Teachers.List)
			teachers.GET("/:id", h.Teachers.Get)
			teachers.GET("/:id/status-history", h.Teachers.History)
			teachers.POST("", h.Teachers.Create)
			teachers.PUT("/:id", h.Teachers.Update)
			teachers.PUT("/:id/status", h.Teachers.AssignStatus)
			teachers.DELETE("/:id", h.Teachers.Delete)
		}

		rooms := authorized.Group("/rooms")
		{
			rooms.GET("", h.Rooms.List)
			rooms.GET("/:id", h.Rooms.Get)
			rooms.POST("", h.Rooms.Create)
			rooms.PUT("/:id", h.Rooms.Update)
			rooms.DELETE("/:id", h.Rooms.Delete)
		}

		interventions := authorized.Group("/interventions")
		{
			interventions.GET("", h.Interventions.List)
			interventions.GET("/:id", h.Interventions.Get)
			interventions.POST("", h.Interventions.Create)
			interventions.PUT("/:id", h.Interventions.Update)
			interventions.DELETE("/:id", h.Interventions.Delete)
		}

		slots := authorized.Group("/schedule-slots")
		{
			slots.GET("", h.ScheduleSlots.List)
			slots.GET("/:id", h.ScheduleSlots.Get)
			slots.POST("", h.ScheduleSlots.Create)
			slots.PUT("/:id", h.ScheduleSlots.Update)
			slots.DELETE("/:id", h.ScheduleSlots.Delete)
		}

		allocations := authorized.Group("/allocations")
		{
			allocations.GET("", h.Allocations.List)
			allocations.GET("/:id", h.Allocations.Get)
			allocations.POST("", h.Allocations.Create)
			allocations.PUT("/:id", h.Allocations.Update)
			allocations.DELETE("/:id", h.Allocations.Delete)
		}

		reports := authorized.Group("/reports")
		{
			reports.GET("/service", h.Reports.Service)
			reports.GET("/service/export", h.Reports.Export)
			reports.GET("/distribution", h.Reports.Distribution)
			reports.GET("/distribution/export", h.Reports.DistributionExport)
		}
	}

	return r
}
