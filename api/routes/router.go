// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"aerolink/docs"
	"aerolink/internal/auth"
	"aerolink/internal/bookings"
	"aerolink/internal/flights"
	"aerolink/internal/seats"
	"aerolink/internal/shared/app"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router registers every module on the engine from the application container
type Router struct {
	app *app.Container
}

// NewRouter creates a new router instance
func NewRouter(container *app.Container) *Router {
	return &Router{app: container}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	r.setupDocsRoutes(engine)

	cfg := r.app.Config
	api := engine.Group(cfg.GetAPIBasePath())
	{
		auth.NewRouter(r.app.Auth, cfg.JWT).SetupRoutes(api)
		flights.SetupFlightRoutes(api, r.app.Flights, cfg.JWT)
		seats.SetupSeatRoutes(api, r.app.Seats)
		bookings.SetupBookingRoutes(api, r.app.Bookings, cfg.JWT)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.app.DB.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "aerolink-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "aerolink-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.app.Config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.app.Config.APIVersion,
			"timestamp":     time.Now(),
			"kafka_enabled": r.app.Config.Kafka.Enabled,
			"rate_limiting": r.app.Config.RateLimit.Enabled,
		})
	})
}

func (r *Router) setupDocsRoutes(engine *gin.Engine) {
	docs.SwaggerInfo.BasePath = r.app.Config.GetAPIBasePath()
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
