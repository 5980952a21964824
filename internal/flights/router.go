package flights

import (
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupFlightRoutes(rg *gin.RouterGroup, controller *Controller, jwtCfg config.JWTConfig) {
	flight := rg.Group("/flight")
	{
		flight.POST("/search", middleware.OptionalAuth(jwtCfg), controller.SearchFlights) // POST /api/v1/flight/search
		flight.GET("/get-all-airports", controller.GetAllAirports)                        // GET /api/v1/flight/get-all-airports
		flight.GET("/get-all-flights", controller.GetAllFlights)                          // GET /api/v1/flight/get-all-flights?departure_airport_id=
		flight.GET("/:id", controller.GetFlight)                                          // GET /api/v1/flight/:id
	}
}
