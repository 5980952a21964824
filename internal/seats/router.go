package seats

import "github.com/gin-gonic/gin"

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	flight := rg.Group("/flight")
	{
		flight.GET("/:id/seats", controller.GetFlightSeatMap) // GET /api/v1/flight/:id/seats
	}
}
