package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/api"
	"github.com/pageza/chefbook/backend/internal/database"
	"github.com/pageza/chefbook/backend/internal/metrics"
	"github.com/pageza/chefbook/backend/internal/middleware"
	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/wizard"
)

// Dependencies are the services the router exposes. Redis and Images are
// optional; without Redis no rate limiting is applied and without Images the
// image routes are not registered.
type Dependencies struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Log            *slog.Logger
	AllowedOrigins []string

	Auth      service.IAuthService
	Taxonomy  service.ITaxonomyService
	Recipes   service.IRecipeService
	Favorites service.IFavoriteService
	Images    service.IImageService
	Wizard    *wizard.Workflow
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Log),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		metrics.Middleware(),
		middleware.CORS(deps.AllowedOrigins),
		middleware.ErrorHandler(deps.Log),
	)

	router.GET("/health", healthHandler(deps))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	authHandler := api.NewAuthHandler(deps.Auth)
	public := v1.Group("")
	if deps.Redis != nil {
		public.Use(middleware.NewAuthRateLimiter(deps.Redis, deps.Log).RateLimitMiddleware())
	}
	authHandler.RegisterPublicRoutes(public)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))
	if deps.Redis != nil {
		protected.Use(middleware.NewWriteRateLimiter(deps.Redis, deps.Log).RateLimitMiddleware())
	}
	{
		authHandler.RegisterRoutes(protected)
		api.NewTaxonomyHandler(deps.Taxonomy).RegisterRoutes(protected)
		api.NewRecipeHandler(deps.Recipes, deps.Favorites).RegisterRoutes(protected)
		api.NewWizardHandler(deps.Wizard).RegisterRoutes(protected)
		if deps.Images != nil {
			api.NewImageHandler(deps.Images).RegisterRoutes(protected)
		}
	}

	return router
}

func healthHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK

		if err := database.HealthCheck(ctx, deps.DB); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if deps.Redis != nil {
			checks["redis"] = "ok"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
