package app

import (
	"time"

	"valuate_backend/docs"
	"valuate_backend/internal/config"
	"valuate_backend/internal/middleware"
	"valuate_backend/internal/model"
	"valuate_backend/pkg/monitoring"
	"valuate_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// invalidateAfter drops cached responses under the prefix once a write
// succeeds.
func invalidateAfter(cache *middleware.ResponseCache, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if cache != nil && c.Writer.Status() < 400 {
			cache.Invalidate(c, prefix)
		}
	}
}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	cache := a.cache()

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/health/live", c.health.Live)
		public.GET("/health/ready", c.health.Ready)
		public.GET("/health/detailed", c.health.Detailed)
		public.GET("/auth/setup", c.auth.SetupStatus)
		public.POST("/auth/setup", c.auth.Setup)
		public.POST("/auth/login", c.auth.Login)
	}

	// Authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/profile", c.auth.GetProfile)
		authGroup.POST("/upload", c.upload.Upload)

		a.registerValuatorRoutes(authGroup, c, cfg, cache)
		a.registerOrganizationRoutes(authGroup, c, cache)
	}

	// Admin routes
	admin := router.Group("/api/teachers")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("", c.auth.CreateTeacher)
		admin.GET("", c.auth.ListTeachers)
		admin.PATCH("/:id/active", c.auth.SetTeacherActive)
	}
}

func (a *App) registerValuatorRoutes(rg *gin.RouterGroup, c *controllers, cfg *config.Config, cache *middleware.ResponseCache) {
	// Grading endpoints cost a completion call each, so they get a
	// stricter per-IP limit than the rest of the API.
	gradingLimit := cfg.RateLimit.GradingMaxRequests
	if gradingLimit <= 0 {
		gradingLimit = 30
	}
	gradingLimiter := security.RateLimiter(gradingLimit, time.Minute)

	valuators := rg.Group("/valuators")
	{
		valuators.POST("", invalidateAfter(cache, "/api/valuators"), c.valuator.Create)
		valuators.DELETE("/:id", invalidateAfter(cache, "/api/valuators"), c.valuator.Delete)
		valuators.PATCH("/:id/organization", invalidateAfter(cache, "/api/valuators"), c.valuator.LinkOrganization)
		valuators.POST("/:id/valuate", gradingLimiter, invalidateAfter(cache, "/api/valuators"), c.valuator.Valuate)

		if cache != nil {
			cached := valuators.Group("")
			cached.Use(cache.Middleware())
			cached.GET("", c.valuator.List)
			cached.GET("/:id", c.valuator.Get)
			cached.GET("/:id/valuations", c.valuator.ListValuations)
			cached.GET("/:id/marksheet", c.valuator.Marksheet)
		} else {
			valuators.GET("", c.valuator.List)
			valuators.GET("/:id", c.valuator.Get)
			valuators.GET("/:id/valuations", c.valuator.ListValuations)
			valuators.GET("/:id/marksheet", c.valuator.Marksheet)
		}
	}

	valuations := rg.Group("/valuations")
	{
		valuations.GET("/:id", c.valuator.GetValuation)
		valuations.GET("/:id/total", c.valuator.TotalMarks)
		valuations.POST("/:id/revaluate", gradingLimiter, invalidateAfter(cache, "/api/valuators"), c.valuator.Revaluate)
	}
}

func (a *App) registerOrganizationRoutes(rg *gin.RouterGroup, c *controllers, cache *middleware.ResponseCache) {
	schools := rg.Group("/schools")
	{
		schools.POST("", invalidateAfter(cache, "/api/schools"), c.organization.CreateSchool)
		schools.GET("", c.organization.ListSchools)
		schools.PUT("/:id", invalidateAfter(cache, "/api/schools"), c.organization.RenameSchool)
		schools.DELETE("/:id", invalidateAfter(cache, "/api/schools"), c.organization.DeleteSchool)
		schools.POST("/:id/grades", c.organization.CreateGrade)
		schools.GET("/:id/grades", c.organization.ListGrades)
	}

	grades := rg.Group("/grades")
	{
		grades.PUT("/:id", c.organization.RenameGrade)
		grades.DELETE("/:id", c.organization.DeleteGrade)
		grades.POST("/:id/classes", c.organization.CreateClass)
		grades.GET("/:id/classes", c.organization.ListClasses)
	}

	classes := rg.Group("/classes")
	{
		classes.PUT("/:id", c.organization.RenameClass)
		classes.DELETE("/:id", c.organization.DeleteClass)
		classes.POST("/:id/subjects", c.organization.CreateSubject)
		classes.GET("/:id/subjects", c.organization.ListSubjects)
	}

	rg.PUT("/subjects/:id", c.organization.RenameSubject)
	rg.DELETE("/subjects/:id", c.organization.DeleteSubject)
}
